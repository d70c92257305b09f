package sensor

import (
	"context"
	"log/slog"
	"math"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
)

// NewMockSource creates a source producing midpoint + amplitude*sin(frequency*step)
// where step advances by 0.1 per read.
func NewMockSource(config MockConfig, rate float64) *MockSource {
	if rate <= 0 {
		rate = DefaultSamplingRate
	}

	if !config.Unit.Valid() {
		config.Unit = temperature.Celsius
	}

	return &MockSource{
		config: config,
		rate:   rate,
	}
}

func (m *MockSource) Connect(ctx context.Context) error {
	slog.Debug(">>MockSource.Connect")
	defer slog.Debug("<<MockSource.Connect")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = true
	return nil
}

func (m *MockSource) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

func (m *MockSource) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.connected
}

func (m *MockSource) SamplingRate() float64 {
	return m.rate
}

func (m *MockSource) SourceType() SourceType {
	return SOURCETYPE_TEST
}

func (m *MockSource) Read(ctx context.Context) (temperature.Temperature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return temperature.Temperature{}, ErrNotConnected
	}

	value := m.config.Midpoint + m.config.Amplitude*math.Sin(m.config.Frequency*m.step)
	m.step += 0.1

	return temperature.Temperature{Value: value, Unit: m.config.Unit}, nil
}

func (a *MockAlarm) TurnOn() error {
	slog.Debug(">>MockAlarm.TurnOn")
	defer slog.Debug("<<MockAlarm.TurnOn")

	a.mu.Lock()
	defer a.mu.Unlock()

	a.on = true
	a.count++
	return nil
}

func (a *MockAlarm) TurnOff() error {
	slog.Debug(">>MockAlarm.TurnOff")
	defer slog.Debug("<<MockAlarm.TurnOff")

	a.mu.Lock()
	defer a.mu.Unlock()

	a.on = false
	return nil
}

func (a *MockAlarm) IsOn() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.on, nil
}

// Activations returns how many times the alarm was turned on.
func (a *MockAlarm) Activations() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.count
}
