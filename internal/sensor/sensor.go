// Package sensor adapts temperature hardware and alarm outputs to the
// interfaces the thermometer and notifier depend on.
package sensor

import (
	"log/slog"
)

const DefaultSamplingRate = 1.0

// NewSource picks the first temperature device from the configuration, or a
// sine wave mock when useMock is set.
func NewSource(config SensorConfig, useMock bool) (Source, error) {
	slog.Debug(">>NewSource")
	defer slog.Debug("<<NewSource")

	rate := config.SamplingRate
	if rate <= 0 {
		rate = DefaultSamplingRate
	}

	if useMock {
		return NewMockSource(config.Mock, rate), nil
	}

	for _, d := range config.Devices {
		if d.SensorType == SENSOR_TEMPERATURE && d.DriverType == DRIVERTYPE_DS18B20 {
			return &HardwareSource{
				device:  d,
				timeout: config.SensorTimeout,
				rate:    rate,
			}, nil
		}
	}

	return nil, ErrNoTemperatureDevice
}

// NewAlarm returns the configured GPIO alarm, or a mock when useMock is set.
// It returns ErrNoAlarmDevice when none is configured.
func NewAlarm(config SensorConfig, useMock bool) (Alarm, error) {
	slog.Debug(">>NewAlarm")
	defer slog.Debug("<<NewAlarm")

	if useMock {
		return &MockAlarm{}, nil
	}

	for _, d := range config.Devices {
		if d.SensorType == SENSOR_ALARM && d.DriverType == DRIVERTYPE_GPIO {
			return &HardwareAlarm{device: d}, nil
		}
	}

	return nil, ErrNoAlarmDevice
}
