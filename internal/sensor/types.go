package sensor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
)

const (
	DRIVERTYPE_DS18B20 string = "DS18B20"
	DRIVERTYPE_GPIO    string = "GPIO"
	SENSOR_TEMPERATURE string = "temperature"
	SENSOR_ALARM       string = "alarm"
)

const (
	SOURCETYPE_TEST     SourceType = "test"
	SOURCETYPE_FILE     SourceType = "file"
	SOURCETYPE_HARDWARE SourceType = "hardware"
	SOURCETYPE_NETWORK  SourceType = "network"
)

var (
	ErrNoTemperatureDevice = errors.New("no temperature device configured")
	ErrNoAlarmDevice       = errors.New("no alarm device configured")
	ErrNotConnected        = errors.New("source is not connected")
	ErrSensorTimeout       = errors.New("timed out reading sensor")
)

type (
	SourceType string

	SensorConfig struct {
		SensorTimeout time.Duration
		SamplingRate  float64
		Devices       []DeviceConfig
		Mock          MockConfig
	}

	DeviceConfig struct {
		DriverType               string  `json:"driver_type" yaml:"driver_type"`
		SensorType               string  `json:"sensor_type" yaml:"sensor_type"`
		Address                  string  `json:"address" yaml:"address"`
		Name                     string  `json:"name" yaml:"name"`
		Description              string  `json:"description" yaml:"description"`
		NormallyOn               bool    `json:"normally_on,omitempty" yaml:"normally_on,omitempty"`
		CalibrationOffsetCelsius float64 `json:"calibration_offset_celsius" yaml:"calibration_offset_celsius"`
	}

	// MockConfig shapes the sine wave produced by the mock source.
	MockConfig struct {
		Midpoint  float64          `json:"midpoint" yaml:"midpoint"`
		Amplitude float64          `json:"amplitude" yaml:"amplitude"`
		Frequency float64          `json:"frequency" yaml:"frequency"`
		Unit      temperature.Unit `json:"unit" yaml:"unit"`
	}

	// Source produces temperature readings at its own sampling rate.
	Source interface {
		Connect(ctx context.Context) error
		Disconnect() error
		Read(ctx context.Context) (temperature.Temperature, error)
		SamplingRate() float64
		SourceType() SourceType
		IsConnected() bool
	}

	// Alarm is an output device that is switched on while a notification is
	// being signalled.
	Alarm interface {
		TurnOn() error
		TurnOff() error
		IsOn() (bool, error)
	}

	HardwareSource struct {
		mu        sync.Mutex
		device    DeviceConfig
		timeout   time.Duration
		rate      float64
		connected bool
	}

	HardwareAlarm struct {
		device DeviceConfig
	}

	MockSource struct {
		mu        sync.Mutex
		config    MockConfig
		rate      float64
		step      float64
		connected bool
	}

	MockAlarm struct {
		mu    sync.Mutex
		on    bool
		count int
	}
)
