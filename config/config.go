package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/sensor"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel             = slog.LevelInfo
	DefaultSensorTimeoutSeconds = 5
	DefaultSamplingRateHz       = 1.0
	DefaultHistoryCapacity      = 60
	DefaultAlarmSeconds         = 10
)

type (
	Config struct {
		Devices              []sensor.DeviceConfig `yaml:"devices"`
		SensorTimeoutSeconds int                   `yaml:"sensor_timeout_seconds"`
		SamplingRateHz       float64               `yaml:"sampling_rate_hz"`
		HistoryCapacity      int                   `yaml:"history_capacity"`
		MaxConsecutiveErrors int                   `yaml:"max_consecutive_errors"`
		AlarmSeconds         int                   `yaml:"alarm_seconds"`
		OriginPatterns       []string              `yaml:"origin_patterns"`
		Mock                 sensor.MockConfig     `yaml:"mock"`
		Monitors             []MonitorSettings     `yaml:"monitors"`
	}

	// MonitorSettings is a monitor registered at startup.
	MonitorSettings struct {
		Name             string                     `yaml:"name"`
		Description      string                     `yaml:"description"`
		Target           temperature.Temperature    `yaml:"target"`
		Direction        threshold.Direction        `yaml:"direction"`
		NotificationMode threshold.NotificationMode `yaml:"notification_mode"`
		Hysteresis       threshold.Hysteresis       `yaml:"hysteresis"`
	}
)

// LoadConfigSettings reads a YAML settings file. JSON files are valid YAML and
// load as well.
func LoadConfigSettings(filename string) (Config, error) {
	var config Config

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	return ParseConfigSettings(data)
}

func ParseConfigSettings(data []byte) (Config, error) {
	var config Config

	// reject unknown keys
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}

	config.applyDefaults()

	for i, m := range config.Monitors {
		if err := m.MonitorConfig().Validate(); err != nil {
			return config, fmt.Errorf("monitor %d (%s): %w", i, m.Name, err)
		}
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.SensorTimeoutSeconds <= 0 {
		c.SensorTimeoutSeconds = DefaultSensorTimeoutSeconds
	}

	if c.SamplingRateHz <= 0 {
		c.SamplingRateHz = DefaultSamplingRateHz
	}

	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = DefaultHistoryCapacity
	}

	if c.AlarmSeconds <= 0 {
		c.AlarmSeconds = DefaultAlarmSeconds
	}
}

func (c Config) SensorConfig() sensor.SensorConfig {
	return sensor.SensorConfig{
		SensorTimeout: time.Duration(c.SensorTimeoutSeconds) * time.Second,
		SamplingRate:  c.SamplingRateHz,
		Devices:       c.Devices,
		Mock:          c.Mock,
	}
}

func (c Config) AlarmDuration() time.Duration {
	return time.Duration(c.AlarmSeconds) * time.Second
}

func (m MonitorSettings) MonitorConfig() threshold.MonitorConfig {
	return threshold.MonitorConfig{
		Name:             m.Name,
		Description:      m.Description,
		TargetTemp:       m.Target,
		Direction:        m.Direction,
		NotificationMode: m.NotificationMode,
		Hysteresis:       m.Hysteresis,
	}
}
