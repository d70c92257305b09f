package threshold

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
)

// The zero values of Direction and NotificationMode are invalid so that a
// config with the field left out fails Validate.
const (
	Rising Direction = iota + 1
	Falling
	Both
)

const (
	Once NotificationMode = iota + 1
	All
)

var (
	ErrUnknownDirection        = errors.New("unknown threshold direction")
	ErrUnknownNotificationMode = errors.New("unknown notification mode")
	ErrInvalidHysteresis       = errors.New("invalid hysteresis")
	ErrInvalidTarget           = errors.New("invalid target temperature")
)

type (
	Direction int

	NotificationMode int

	// Hysteresis is the half-width of the band around the target temperature.
	Hysteresis struct {
		Unit  temperature.Unit `json:"unit" yaml:"unit"`
		Range float64          `json:"range" yaml:"range"`
	}

	// MonitorConfig describes a single watch on the temperature stream. The ID
	// is assigned by the Engine when the config is added.
	MonitorConfig struct {
		ID               string                  `json:"id"`
		Name             string                  `json:"name,omitempty"`
		Description      string                  `json:"description,omitempty"`
		TargetTemp       temperature.Temperature `json:"target_temp"`
		Direction        Direction               `json:"direction"`
		NotificationMode NotificationMode        `json:"notification_mode"`
		Hysteresis       Hysteresis              `json:"hysteresis"`
	}

	// Callback is invoked when a monitor fires. A returned error or a panic is
	// logged by the Engine and does not stop delivery to other callbacks.
	Callback func(config MonitorConfig, sample temperature.Sample) error

	// Monitor is the part of the Engine a sample producer needs.
	Monitor interface {
		UpdateTemperature(sample temperature.Sample)
	}

	// Engine tracks monitor configurations and fires callbacks when a sample
	// stream enters a configuration's band in the configured direction.
	Engine struct {
		// serializes UpdateTemperature so transition state is single writer
		updateMu sync.Mutex

		mu        sync.Mutex
		monitors  []*monitorState
		index     map[string]*monitorState
		observers *observerRegistry
		newID     func() string
	}

	monitorState struct {
		config     MonitorConfig
		previous   *temperature.Sample
		withinBand bool
	}

	observer struct {
		id       string
		callback Callback
	}

	observerRegistry struct {
		byMonitor map[string][]observer
	}
)

// ToCelsius returns the band half-width in Celsius degrees.
func (h Hysteresis) ToCelsius() float64 {
	if h.Unit == temperature.Fahrenheit {
		return h.Range * 5 / 9
	}

	return h.Range
}

// Validate reports whether the configuration can be evaluated.
func (c MonitorConfig) Validate() error {
	if !c.TargetTemp.Unit.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, temperature.ErrUnknownUnit)
	}

	if !c.Direction.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownDirection, int(c.Direction))
	}

	if !c.NotificationMode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownNotificationMode, int(c.NotificationMode))
	}

	if !c.Hysteresis.Unit.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidHysteresis, temperature.ErrUnknownUnit)
	}

	if !(c.Hysteresis.Range >= 0) {
		return fmt.Errorf("%w: range must be non-negative, got %v", ErrInvalidHysteresis, c.Hysteresis.Range)
	}

	return nil
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising":
		return Rising, nil
	case "falling":
		return Falling, nil
	case "both":
		return Both, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

func (d Direction) Valid() bool {
	return d == Rising || d == Falling || d == Both
}

func (d Direction) String() string {
	switch d {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}

	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	direction, err := ParseDirection(string(text))
	if err != nil {
		return err
	}

	*d = direction
	return nil
}

func ParseNotificationMode(s string) (NotificationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once":
		return Once, nil
	case "all":
		return All, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownNotificationMode, s)
}

func (m NotificationMode) Valid() bool {
	return m == Once || m == All
}

func (m NotificationMode) String() string {
	switch m {
	case Once:
		return "once"
	case All:
		return "all"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m NotificationMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNotificationMode, int(m))
	}

	return []byte(m.String()), nil
}

func (m *NotificationMode) UnmarshalText(text []byte) error {
	mode, err := ParseNotificationMode(string(text))
	if err != nil {
		return err
	}

	*m = mode
	return nil
}
