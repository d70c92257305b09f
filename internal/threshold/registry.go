package threshold

func newObserverRegistry() *observerRegistry {
	return &observerRegistry{
		byMonitor: make(map[string][]observer),
	}
}

func (r *observerRegistry) add(monitorID string, o observer) {
	r.byMonitor[monitorID] = append(r.byMonitor[monitorID], o)
}

// remove deletes one observer and keeps the order of the others.
func (r *observerRegistry) remove(monitorID, observerID string) bool {
	observers, ok := r.byMonitor[monitorID]
	if !ok {
		return false
	}

	for i, o := range observers {
		if o.id != observerID {
			continue
		}

		remaining := make([]observer, 0, len(observers)-1)
		remaining = append(remaining, observers[:i]...)
		remaining = append(remaining, observers[i+1:]...)
		if len(remaining) == 0 {
			delete(r.byMonitor, monitorID)
		} else {
			r.byMonitor[monitorID] = remaining
		}

		return true
	}

	return false
}

// snapshot returns the observers in registration order. The slice is never
// modified in place, so it stays valid after the registry lock is released.
func (r *observerRegistry) snapshot(monitorID string) []observer {
	return r.byMonitor[monitorID]
}

func (r *observerRegistry) count(monitorID string) int {
	return len(r.byMonitor[monitorID])
}

func (r *observerRegistry) drop(monitorID string) {
	delete(r.byMonitor, monitorID)
}
