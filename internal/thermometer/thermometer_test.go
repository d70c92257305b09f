package thermometer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/sensor"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
)

type mockSource struct {
	mu           sync.Mutex
	values       []float64
	err          error
	connected    bool
	disconnected bool
}

func (m *mockSource) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *mockSource) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnected = true
	return nil
}

func (m *mockSource) Read(ctx context.Context) (temperature.Temperature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return temperature.Temperature{}, m.err
	}

	if len(m.values) == 0 {
		return temperature.Temperature{}, errors.New("no more values")
	}

	v := m.values[0]
	m.values = m.values[1:]
	return temperature.NewCelsius(v), nil
}

func (m *mockSource) SamplingRate() float64 {
	return 100
}

func (m *mockSource) SourceType() sensor.SourceType {
	return sensor.SOURCETYPE_TEST
}

func (m *mockSource) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

type mockMonitor struct {
	mu      sync.Mutex
	samples []temperature.Sample
}

func (m *mockMonitor) UpdateTemperature(sample temperature.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
}

type mockStore struct {
	mu     sync.Mutex
	params []database.SaveSampleParams
	err    error
}

func (m *mockStore) SaveSample(ctx context.Context, arg database.SaveSampleParams) (database.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = append(m.params, arg)
	return database.Sample{}, m.err
}

func TestSample(t *testing.T) {
	t.Run("should push to the buffer, store and monitor", func(t *testing.T) {
		source := &mockSource{values: []float64{1, 2, 3}}
		monitor := &mockMonitor{}
		store := &mockStore{}
		th := New(source, monitor, Config{Capacity: 2, Store: store})

		for i := 0; i < 3; i++ {
			if err := th.Sample(context.Background()); err != nil {
				t.Fatalf("failed to sample: %v", err)
			}
		}

		if len(monitor.samples) != 3 {
			t.Errorf("expected 3 samples delivered to the monitor, got %d", len(monitor.samples))
		}

		if len(store.params) != 3 || store.params[2].TemperatureC != 3 || store.params[2].Unit != "celsius" {
			t.Errorf("unexpected stored samples: %+v", store.params)
		}

		values := th.Values()
		if len(values) != 2 || values[0].Reading.Value != 2 || values[1].Reading.Value != 3 {
			t.Errorf("unexpected buffered values: %+v", values)
		}

		current, ok := th.Current()
		if !ok || current.Reading.Value != 3 {
			t.Errorf("expected current value 3, got (%v, %v)", current.Reading.Value, ok)
		}
	})

	t.Run("should keep going when the store fails", func(t *testing.T) {
		source := &mockSource{values: []float64{1}}
		monitor := &mockMonitor{}
		th := New(source, monitor, Config{Store: &mockStore{err: errors.New("database down")}})

		if err := th.Sample(context.Background()); err != nil {
			t.Fatalf("failed to sample: %v", err)
		}

		if len(monitor.samples) != 1 {
			t.Errorf("expected the sample to reach the monitor")
		}
	})

	t.Run("should not touch the monitor on read failure", func(t *testing.T) {
		source := &mockSource{err: errors.New("sensor unplugged")}
		monitor := &mockMonitor{}
		th := New(source, monitor, Config{})

		if err := th.Sample(context.Background()); err == nil {
			t.Fatal("expected an error")
		}

		if len(monitor.samples) != 0 {
			t.Errorf("expected no samples, got %d", len(monitor.samples))
		}

		if _, ok := th.Current(); ok {
			t.Error("expected no current value")
		}
	})
}

func TestRunStopsAfterTooManyErrors(t *testing.T) {
	source := &mockSource{err: errors.New("sensor unplugged")}
	th := New(source, &mockMonitor{}, Config{MaxConsecutiveErrors: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := th.Run(ctx)
	if !errors.Is(err, ErrTooManyReadErrors) {
		t.Errorf("expected %v, got %v", ErrTooManyReadErrors, err)
	}

	if !source.disconnected {
		t.Error("expected the source to be disconnected")
	}
}

func TestRunFeedsTheEngine(t *testing.T) {
	source := &mockSource{values: []float64{5, 9.5, 10, 15, 10}}
	engine := threshold.NewEngine()
	id, err := engine.AddConfig(threshold.MonitorConfig{
		TargetTemp:       temperature.NewCelsius(10),
		Direction:        threshold.Both,
		NotificationMode: threshold.All,
		Hysteresis:       threshold.Hysteresis{Unit: temperature.Celsius, Range: 1},
	})
	if err != nil {
		t.Fatalf("failed to add config: %v", err)
	}

	fired := make(chan temperature.Sample, 10)
	engine.AddCallback(id, func(_ threshold.MonitorConfig, s temperature.Sample) error {
		fired <- s
		return nil
	})

	th := New(source, engine, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- th.Run(ctx)
	}()

	for _, want := range []float64{9.5, 10} {
		select {
		case s := <-fired:
			if s.Reading.Value != want {
				t.Errorf("expected firing at %v, got %v", want, s.Reading.Value)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for firing at %v", want)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("expected a clean stop, got %v", err)
	}
}
