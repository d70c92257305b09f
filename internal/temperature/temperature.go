// Package temperature holds the temperature value types shared by the sources,
// the threshold engine and the HTTP layer. Celsius is the canonical unit that
// all comparisons are normalized to.
package temperature

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// The zero Unit is invalid so that a missing unit is rejected.
const (
	Celsius Unit = iota + 1
	Fahrenheit
)

var ErrUnknownUnit = errors.New("unknown temperature unit")

type (
	Unit int

	// Temperature is a value paired with the unit it was measured in.
	Temperature struct {
		Value float64 `json:"value" yaml:"value"`
		Unit  Unit    `json:"unit" yaml:"unit"`
	}

	// Sample is a temperature captured at a moment in time.
	Sample struct {
		Reading    Temperature `json:"reading"`
		CapturedAt time.Time   `json:"captured_at"`
	}
)

// FahrenheitToCelsius converts a Fahrenheit value to Celsius.
func FahrenheitToCelsius(fahrenheit float64) float64 {
	return (fahrenheit - 32) * 5 / 9
}

// CelsiusToFahrenheit converts a Celsius value to Fahrenheit.
func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

func NewCelsius(value float64) Temperature {
	return Temperature{Value: value, Unit: Celsius}
}

func NewFahrenheit(value float64) Temperature {
	return Temperature{Value: value, Unit: Fahrenheit}
}

// ToCelsius returns the value in Celsius. An unknown unit yields NaN.
func (t Temperature) ToCelsius() float64 {
	switch t.Unit {
	case Celsius:
		return t.Value
	case Fahrenheit:
		return FahrenheitToCelsius(t.Value)
	default:
		return math.NaN()
	}
}

// ToFahrenheit returns the value in Fahrenheit. An unknown unit yields NaN.
func (t Temperature) ToFahrenheit() float64 {
	switch t.Unit {
	case Celsius:
		return CelsiusToFahrenheit(t.Value)
	case Fahrenheit:
		return t.Value
	default:
		return math.NaN()
	}
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.2f%s", t.Value, t.Unit.Symbol())
}

func NewSample(reading Temperature, capturedAt time.Time) Sample {
	return Sample{Reading: reading, CapturedAt: capturedAt}
}

// CapturedAtMillis returns the capture time in milliseconds since the epoch.
func (s Sample) CapturedAtMillis() int64 {
	return s.CapturedAt.UnixMilli()
}

// ParseUnit accepts the long names and the single letter symbols.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c":
		return Celsius, nil
	case "fahrenheit", "f":
		return Fahrenheit, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

func (u Unit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

func (u Unit) String() string {
	switch u {
	case Celsius:
		return "celsius"
	case Fahrenheit:
		return "fahrenheit"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

func (u Unit) Symbol() string {
	switch u {
	case Celsius:
		return "C"
	case Fahrenheit:
		return "F"
	default:
		return "?"
	}
}

func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, int(u))
	}

	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	unit, err := ParseUnit(string(text))
	if err != nil {
		return err
	}

	*u = unit
	return nil
}
