package notifier

import "log/slog"

func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultQueueSize
	}

	return &Hub{
		subscribers: make(map[int]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns a channel of events and a function that unsubscribes and
// closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, h.bufferSize)
	h.subscribers[id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if ch, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Broadcast never blocks. A subscriber that is not keeping up misses the event.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("subscriber is not keeping up, dropping event", "subscriber", id, "monitor", event.MonitorID)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers)
}
