// Package history keeps the most recent temperature samples in a fixed size
// ring buffer for display. It plays no part in threshold decisions.
package history

import (
	"sync"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
)

const DefaultCapacity = 60

// Buffer is a ring buffer of samples. It is safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	samples  []temperature.Sample
	head     int
	size     int
	capacity int
}

// NewBuffer creates a buffer holding at most capacity samples. A capacity below
// one falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &Buffer{
		samples:  make([]temperature.Sample, capacity),
		capacity: capacity,
	}
}

// Push stamps the reading with t, stores it and returns the sample.
func (b *Buffer) Push(reading temperature.Temperature, t time.Time) temperature.Sample {
	sample := temperature.NewSample(reading, t)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples[b.head] = sample
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}

	return sample
}

// Values returns the stored samples from oldest to newest.
func (b *Buffer) Values() []temperature.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]temperature.Sample, 0, b.size)
	if b.size < b.capacity {
		return append(out, b.samples[:b.size]...)
	}

	out = append(out, b.samples[b.head:]...)
	return append(out, b.samples[:b.head]...)
}

// Latest returns the most recent sample, if any.
func (b *Buffer) Latest() (temperature.Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return temperature.Sample{}, false
	}

	return b.samples[(b.head+b.capacity-1)%b.capacity], true
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.size
}

func (b *Buffer) Capacity() int {
	return b.capacity
}
