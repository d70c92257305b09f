package temperatures

import (
	"context"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type (
	TemperatureReader interface {
		Current() (temperature.Sample, bool)
		Values() []temperature.Sample
	}

	SampleStore interface {
		FindRecentSamples(ctx context.Context, limit int32) ([]database.Sample, error)
	}

	TemperatureReading struct {
		Value        float64   `json:"value"`
		Unit         string    `json:"unit"`
		TemperatureC float64   `json:"temperature_c"`
		TemperatureF float64   `json:"temperature_f"`
		CapturedAt   time.Time `json:"captured_at"`
	}

	Handler struct {
		reader TemperatureReader
		store  SampleStore
	}
)
