package temperature

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conversionPairs = []struct {
	celsius    float64
	fahrenheit float64
}{
	{0, 32},
	{10, 50},
	{20, 68},
	{23.9, 75},
	{37, 98.6},
	{37.8, 100},
}

func TestConversionRoundTrip(t *testing.T) {
	for _, p := range conversionPairs {
		assert.InDelta(t, p.celsius, FahrenheitToCelsius(CelsiusToFahrenheit(p.celsius)), 1e-9)
		assert.InDelta(t, p.fahrenheit, CelsiusToFahrenheit(FahrenheitToCelsius(p.fahrenheit)), 1e-9)

		// the table values are rounded to a tenth of a degree
		assert.InDelta(t, p.fahrenheit, CelsiusToFahrenheit(p.celsius), 0.05)
		assert.InDelta(t, p.celsius, FahrenheitToCelsius(p.fahrenheit), 0.05)
	}
}

func TestTemperatureConversion(t *testing.T) {
	t.Run("same unit returns the value unchanged", func(t *testing.T) {
		assert.Equal(t, 21.5, NewCelsius(21.5).ToCelsius())
		assert.Equal(t, 70.1, NewFahrenheit(70.1).ToFahrenheit())
	})

	t.Run("converts across units", func(t *testing.T) {
		assert.InDelta(t, 212.0, NewCelsius(100).ToFahrenheit(), 1e-9)
		assert.InDelta(t, -40.0, NewFahrenheit(-40).ToCelsius(), 1e-9)
	})

	t.Run("unknown unit yields NaN", func(t *testing.T) {
		bad := Temperature{Value: 10, Unit: Unit(42)}
		assert.True(t, math.IsNaN(bad.ToCelsius()))
		assert.True(t, math.IsNaN(bad.ToFahrenheit()))
	})
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("Fahrenheit")
	require.NoError(t, err)
	assert.Equal(t, Fahrenheit, u)

	u, err = ParseUnit("c")
	require.NoError(t, err)
	assert.Equal(t, Celsius, u)

	_, err = ParseUnit("kelvin")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestZeroUnitIsInvalid(t *testing.T) {
	var u Unit
	assert.False(t, u.Valid())
	assert.True(t, math.IsNaN(Temperature{Value: 10}.ToCelsius()))
}

func TestTemperatureJSON(t *testing.T) {
	data, err := json.Marshal(NewFahrenheit(98.6))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":98.6,"unit":"fahrenheit"}`, string(data))

	var temp Temperature
	require.NoError(t, json.Unmarshal([]byte(`{"value":4,"unit":"celsius"}`), &temp))
	assert.Equal(t, NewCelsius(4), temp)

	err = json.Unmarshal([]byte(`{"value":4,"unit":"rankine"}`), &temp)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestSampleCapturedAtMillis(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	s := NewSample(NewCelsius(3), at)
	assert.Equal(t, int64(1700000000123), s.CapturedAtMillis())
	assert.Equal(t, NewCelsius(3), s.Reading)
}
