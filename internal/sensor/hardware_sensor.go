package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/stianeikeland/go-rpio"
	"github.com/yryz/ds18b20"
)

func (s *HardwareSource) Connect(ctx context.Context) error {
	slog.Info(">>HardwareSource.Connect", "name", s.device.Name, "address", s.device.Address)
	defer slog.Info("<<HardwareSource.Connect")

	// make sure the 1-wire bus can see the device before we start sampling
	sensors, err := ds18b20.Sensors()
	if err != nil {
		return fmt.Errorf("failed to list 1-wire sensors: %w", err)
	}

	found := false
	for _, address := range sensors {
		if address == s.device.Address {
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("sensor %s not found on the 1-wire bus", s.device.Address)
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()

	return nil
}

func (s *HardwareSource) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
	return nil
}

func (s *HardwareSource) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connected
}

func (s *HardwareSource) SamplingRate() float64 {
	return s.rate
}

func (s *HardwareSource) SourceType() SourceType {
	return SOURCETYPE_HARDWARE
}

type hardwareReading struct {
	celsius float64
	err     error
}

// Read returns the calibrated DS18B20 reading in Celsius. The read is abandoned
// after the configured sensor timeout.
func (s *HardwareSource) Read(ctx context.Context) (temperature.Temperature, error) {
	if !s.IsConnected() {
		return temperature.Temperature{}, ErrNotConnected
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	readings := make(chan hardwareReading, 1)
	go func() {
		t, err := ds18b20.Temperature(s.device.Address)
		readings <- hardwareReading{celsius: t, err: err}
	}()

	select {
	case <-ctx.Done():
		slog.Error("failed to read sensor", "name", s.device.Name, "address", s.device.Address, "error", ctx.Err())
		return temperature.Temperature{}, fmt.Errorf("%w: %w", ErrSensorTimeout, ctx.Err())

	case r := <-readings:
		if r.err != nil {
			slog.Error("failed to read sensor", "name", s.device.Name, "address", s.device.Address, "error", r.err)
			return temperature.Temperature{}, r.err
		}

		return temperature.NewCelsius(r.celsius + s.device.CalibrationOffsetCelsius), nil
	}
}

func (a *HardwareAlarm) TurnOn() error {
	slog.Info(">>HardwareAlarm.TurnOn", "name", a.device.Name)
	defer slog.Info("<<HardwareAlarm.TurnOn", "name", a.device.Name)

	pin, err := openPin(&a.device)
	if err != nil {
		return err
	}

	defer rpio.Close()

	pin.Output()

	// if the device is normally on, that means the pin is low when it is on
	if a.device.NormallyOn {
		pin.Low()
	} else {
		pin.High()
	}

	return nil
}

func (a *HardwareAlarm) TurnOff() error {
	slog.Debug(">>HardwareAlarm.TurnOff", "name", a.device.Name)
	defer slog.Debug("<<HardwareAlarm.TurnOff", "name", a.device.Name)

	pin, err := openPin(&a.device)
	if err != nil {
		return err
	}

	defer rpio.Close()

	pin.Output()

	// if the device is normally on, that means the pin is high when it is off
	if a.device.NormallyOn {
		pin.High()
	} else {
		pin.Low()
	}

	return nil
}

func (a *HardwareAlarm) IsOn() (bool, error) {
	slog.Debug(">>HardwareAlarm.IsOn", "name", a.device.Name, "address", a.device.Address)
	defer slog.Debug("<<HardwareAlarm.IsOn")

	pin, err := openPin(&a.device)
	if err != nil {
		return false, err
	}

	defer rpio.Close()

	var pinOnValue rpio.State = rpio.High
	if a.device.NormallyOn {
		pinOnValue = rpio.Low
	}

	return pin.Read() == pinOnValue, nil
}

// openPin opens the GPIO memory range and resolves the device address to a
// pin. The caller must rpio.Close on success.
func openPin(device *DeviceConfig) (rpio.Pin, error) {
	pinNumber, err := strconv.Atoi(device.Address)
	if err != nil {
		return 0, fmt.Errorf("invalid GPIO address %q for %s: %w", device.Address, device.Name, err)
	}

	if err := rpio.Open(); err != nil {
		return 0, err
	}

	return rpio.Pin(pinNumber), nil
}
