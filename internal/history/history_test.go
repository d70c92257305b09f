package history

import (
	"testing"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
)

func TestBufferWraps(t *testing.T) {
	b := NewBuffer(5)

	now := time.Now()
	for i := 0; i < 7; i++ {
		b.Push(temperature.NewCelsius(float64(30+i)), now.Add(time.Duration(i)*time.Second))
	}

	if b.Len() != 5 {
		t.Errorf("expected 5 samples, got %d", b.Len())
	}

	values := b.Values()
	if len(values) != 5 {
		t.Fatalf("Values(): got %d, want 5", len(values))
	}

	for i, s := range values {
		want := float64(32 + i)
		if s.Reading.Value != want {
			t.Errorf("Values()[%d]: got %f, want %f", i, s.Reading.Value, want)
		}
	}

	latest, ok := b.Latest()
	if !ok || latest.Reading.Value != 36.0 {
		t.Errorf("Latest(): got (%v, %v), want 36.0", latest.Reading.Value, ok)
	}
}

func TestBufferPartial(t *testing.T) {
	b := NewBuffer(10)

	if _, ok := b.Latest(); ok {
		t.Error("expected no latest sample on an empty buffer")
	}

	if len(b.Values()) != 0 {
		t.Error("expected no values on an empty buffer")
	}

	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)
	s := b.Push(temperature.NewFahrenheit(50), base)
	b.Push(temperature.NewFahrenheit(51), base.Add(time.Second))

	if !s.CapturedAt.Equal(base) {
		t.Errorf("pushed sample time: got %v, want %v", s.CapturedAt, base)
	}

	values := b.Values()
	if len(values) != 2 || values[0].Reading.Value != 50 || values[1].Reading.Value != 51 {
		t.Errorf("unexpected values: %+v", values)
	}
}

func TestBufferDefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	if b.Capacity() != DefaultCapacity {
		t.Errorf("Capacity(): got %d, want %d", b.Capacity(), DefaultCapacity)
	}
}
