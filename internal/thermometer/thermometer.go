// Package thermometer connects a temperature source to the threshold engine.
// Each tick it reads the source, stores the sample in the history buffer,
// optionally records it, and hands it to the monitor.
package thermometer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/history"
	"github.com/KyleBrandon/thermometer-server/internal/sensor"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
	"github.com/google/uuid"
)

var ErrTooManyReadErrors = errors.New("too many consecutive read errors")

type (
	SampleStore interface {
		SaveSample(ctx context.Context, arg database.SaveSampleParams) (database.Sample, error)
	}

	Config struct {
		Capacity int
		// MaxConsecutiveErrors stops Run after that many failed reads in a
		// row. Zero keeps retrying forever.
		MaxConsecutiveErrors int
		Store                SampleStore
	}

	Thermometer struct {
		source    sensor.Source
		monitor   threshold.Monitor
		buffer    *history.Buffer
		store     SampleStore
		maxErrors int
		now       func() time.Time
	}
)

func New(source sensor.Source, monitor threshold.Monitor, config Config) *Thermometer {
	return &Thermometer{
		source:    source,
		monitor:   monitor,
		buffer:    history.NewBuffer(config.Capacity),
		store:     config.Store,
		maxErrors: config.MaxConsecutiveErrors,
		now:       time.Now,
	}
}

// Run connects the source and samples it until ctx is done or too many reads
// fail in a row. The source is disconnected before Run returns.
func (t *Thermometer) Run(ctx context.Context) error {
	slog.Debug(">>Thermometer.Run")
	defer slog.Debug("<<Thermometer.Run")

	if err := t.source.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s source: %w", t.source.SourceType(), err)
	}

	defer func() {
		if err := t.source.Disconnect(); err != nil {
			slog.Error("failed to disconnect source", "error", err)
		}
	}()

	ticker := time.NewTicker(t.interval())
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Thermometer.Run: context done")
			return nil

		case <-ticker.C:
			if err := t.Sample(ctx); err != nil {
				failures++
				slog.Error("unable to get value from source", "error", err, "failures", failures)
				if t.maxErrors > 0 && failures >= t.maxErrors {
					return fmt.Errorf("%w: %w", ErrTooManyReadErrors, err)
				}
				continue
			}

			failures = 0
		}
	}
}

// Sample takes one reading and feeds it through the pipeline.
func (t *Thermometer) Sample(ctx context.Context) error {
	reading, err := t.source.Read(ctx)
	if err != nil {
		return err
	}

	sample := t.buffer.Push(reading, t.now())
	t.saveSample(ctx, sample)
	t.monitor.UpdateTemperature(sample)

	return nil
}

func (t *Thermometer) saveSample(ctx context.Context, sample temperature.Sample) {
	if t.store == nil {
		return
	}

	arg := database.SaveSampleParams{
		ID:           uuid.New(),
		CapturedAt:   sample.CapturedAt.UTC(),
		Value:        sample.Reading.Value,
		Unit:         sample.Reading.Unit.String(),
		TemperatureC: sample.Reading.ToCelsius(),
	}

	if _, err := t.store.SaveSample(ctx, arg); err != nil {
		slog.Error("failed to save the temperature sample", "error", err)
	}
}

func (t *Thermometer) interval() time.Duration {
	rate := t.source.SamplingRate()
	if rate <= 0 {
		rate = sensor.DefaultSamplingRate
	}

	return time.Duration(float64(time.Second) / rate)
}

// Values returns the buffered samples from oldest to newest.
func (t *Thermometer) Values() []temperature.Sample {
	return t.buffer.Values()
}

// Current returns the latest sample, if any has been taken.
func (t *Thermometer) Current() (temperature.Sample, bool) {
	return t.buffer.Latest()
}

func (t *Thermometer) Source() sensor.Source {
	return t.source
}
