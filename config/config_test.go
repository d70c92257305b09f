package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
)

func TestParseConfigSettings(t *testing.T) {
	t.Run("should parse monitors and apply defaults", func(t *testing.T) {
		data := []byte(`
monitors:
  - name: freezing
    target: {value: 32, unit: fahrenheit}
    direction: falling
    notification_mode: once
    hysteresis: {unit: fahrenheit, range: 0.5}
`)
		config, err := ParseConfigSettings(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(config.Monitors) != 1 {
			t.Fatalf("expected 1 monitor, got %d", len(config.Monitors))
		}

		m := config.Monitors[0].MonitorConfig()
		if m.Name != "freezing" || m.Direction != threshold.Falling || m.NotificationMode != threshold.Once {
			t.Errorf("unexpected monitor %+v", m)
		}

		if m.TargetTemp != temperature.NewFahrenheit(32) {
			t.Errorf("unexpected target %+v", m.TargetTemp)
		}

		if m.Hysteresis.Unit != temperature.Fahrenheit || m.Hysteresis.Range != 0.5 {
			t.Errorf("unexpected hysteresis %+v", m.Hysteresis)
		}

		if config.SamplingRateHz != DefaultSamplingRateHz || config.HistoryCapacity != DefaultHistoryCapacity {
			t.Errorf("defaults were not applied: %+v", config)
		}

		if config.SensorConfig().SensorTimeout != DefaultSensorTimeoutSeconds*time.Second {
			t.Errorf("unexpected sensor timeout %v", config.SensorConfig().SensorTimeout)
		}
	})

	t.Run("should accept JSON", func(t *testing.T) {
		data := []byte(`{"sampling_rate_hz": 4, "origin_patterns": ["example.com"], "devices": [{"driver_type": "DS18B20", "sensor_type": "temperature", "address": "28-1", "name": "Water"}]}`)
		config, err := ParseConfigSettings(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.SamplingRateHz != 4 || len(config.Devices) != 1 || config.Devices[0].Name != "Water" {
			t.Errorf("unexpected config %+v", config)
		}
	})

	t.Run("should reject unknown enum values", func(t *testing.T) {
		data := []byte(`
monitors:
  - target: {value: 20, unit: celsius}
    direction: sideways
    notification_mode: all
    hysteresis: {unit: celsius, range: 1}
`)
		_, err := ParseConfigSettings(data)
		if !errors.Is(err, threshold.ErrUnknownDirection) {
			t.Errorf("expected %v, got %v", threshold.ErrUnknownDirection, err)
		}
	})

	t.Run("should reject a monitor without a direction", func(t *testing.T) {
		data := []byte(`
monitors:
  - name: hot
    target: {value: 28, unit: celsius}
    notification_mode: all
    hysteresis: {unit: celsius, range: 1}
`)
		_, err := ParseConfigSettings(data)
		if !errors.Is(err, threshold.ErrUnknownDirection) {
			t.Errorf("expected %v, got %v", threshold.ErrUnknownDirection, err)
		}
	})

	t.Run("should reject a misspelled key", func(t *testing.T) {
		data := []byte(`
monitors:
  - name: typo
    target: {value: 28, unit: celsius}
    directoin: falling
    notification_mode: once
    hysteresis: {unit: celsius, range: 1}
`)
		_, err := ParseConfigSettings(data)
		if err == nil || !strings.Contains(err.Error(), "directoin") {
			t.Errorf("expected an error naming the unknown key, got %v", err)
		}
	})

	t.Run("should reject a target without a unit", func(t *testing.T) {
		data := []byte(`
monitors:
  - target: {value: 28}
    direction: rising
    notification_mode: once
    hysteresis: {unit: celsius, range: 1}
`)
		_, err := ParseConfigSettings(data)
		if !errors.Is(err, threshold.ErrInvalidTarget) {
			t.Errorf("expected %v, got %v", threshold.ErrInvalidTarget, err)
		}
	})

	t.Run("should accept an empty file", func(t *testing.T) {
		config, err := ParseConfigSettings(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.HistoryCapacity != DefaultHistoryCapacity {
			t.Errorf("defaults were not applied: %+v", config)
		}
	})

	t.Run("should reject a negative hysteresis", func(t *testing.T) {
		data := []byte(`
monitors:
  - target: {value: 20, unit: celsius}
    direction: both
    notification_mode: all
    hysteresis: {unit: celsius, range: -2}
`)
		_, err := ParseConfigSettings(data)
		if !errors.Is(err, threshold.ErrInvalidHysteresis) {
			t.Errorf("expected %v, got %v", threshold.ErrInvalidHysteresis, err)
		}
	})
}

func TestLoadConfigSettings(t *testing.T) {
	t.Run("should load the bundled settings file", func(t *testing.T) {
		config, err := LoadConfigSettings("config.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(config.Monitors) != 3 || len(config.Devices) != 2 {
			t.Errorf("unexpected config %+v", config)
		}
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := LoadConfigSettings(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected %v, got %v", os.ErrNotExist, err)
		}
	})
}
