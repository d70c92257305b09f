// Package threshold implements the monitoring engine that decides, from a
// stream of temperature samples, when a monitor should notify its callbacks.
//
// A monitor fires only when a sample moves from outside its band
// [target-h, target+h] to inside it, in the configured direction. Staying
// inside the band or leaving it never fires, so noise on one side of a bound
// does not cause repeated notifications.
package threshold

import (
	"fmt"
	"log/slog"

	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/google/uuid"
)

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{
		index:     make(map[string]*monitorState),
		observers: newObserverRegistry(),
		newID:     uuid.NewString,
	}
}

// AddConfig registers a monitor and returns its identifier. Any ID set on the
// config by the caller is replaced.
func (e *Engine) AddConfig(config MonitorConfig) (string, error) {
	if err := config.Validate(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	config.ID = e.newID()
	state := &monitorState{
		config:     config,
		withinBand: false,
	}

	e.monitors = append(e.monitors, state)
	e.index[config.ID] = state

	slog.Debug("monitor added", "id", config.ID, "name", config.Name, "target", config.TargetTemp.String(), "direction", config.Direction.String())

	return config.ID, nil
}

// RemoveConfig removes a monitor together with its transition state and
// callbacks. Unknown ids are ignored.
func (e *Engine) RemoveConfig(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.index[id]; !ok {
		return
	}

	delete(e.index, id)
	for i, m := range e.monitors {
		if m.config.ID == id {
			e.monitors = append(e.monitors[:i:i], e.monitors[i+1:]...)
			break
		}
	}

	e.observers.drop(id)

	slog.Debug("monitor removed", "id", id)
}

// GetConfigs returns a copy of the registered configurations in the order
// they were added.
func (e *Engine) GetConfigs() []MonitorConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	configs := make([]MonitorConfig, 0, len(e.monitors))
	for _, m := range e.monitors {
		configs = append(configs, m.config)
	}

	return configs
}

// GetConfig returns the configuration registered under id.
func (e *Engine) GetConfig(id string) (MonitorConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.index[id]
	if !ok {
		return MonitorConfig{}, false
	}

	return m.config, true
}

// AddCallback registers a callback for a monitor and returns the observer
// identifier. The monitor does not have to exist; the callback only fires
// once a monitor with that id does.
func (e *Engine) AddCallback(monitorID string, callback Callback) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.newID()
	e.observers.add(monitorID, observer{id: id, callback: callback})

	return id
}

// RemoveCallback removes a single observer. Unknown ids are ignored.
func (e *Engine) RemoveCallback(monitorID, observerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers.remove(monitorID, observerID)
}

// ObserverCount returns the number of callbacks registered for a monitor.
func (e *Engine) ObserverCount(monitorID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.observers.count(monitorID)
}

// UpdateTemperature evaluates the sample against every monitor and invokes the
// callbacks of the monitors that fire. Calls are serialized and run to
// completion, callbacks included. Callbacks may use the registration methods
// but must not call UpdateTemperature.
func (e *Engine) UpdateTemperature(sample temperature.Sample) {
	e.updateMu.Lock()
	defer e.updateMu.Unlock()

	e.mu.Lock()
	fired := make([]string, 0)
	for _, m := range e.monitors {
		if m.evaluate(sample) {
			fired = append(fired, m.config.ID)
		}
	}
	e.mu.Unlock()

	for _, id := range fired {
		e.notifyObservers(id, sample)
	}
}

// evaluate advances the monitor state with the sample and reports whether it
// crossed into the band in the configured direction.
func (m *monitorState) evaluate(sample temperature.Sample) bool {
	if m.previous == nil {
		m.previous = &sample
		return false
	}

	previous := m.previous.Reading.ToCelsius()
	current := sample.Reading.ToCelsius()
	target := m.config.TargetTemp.ToCelsius()
	h := m.config.Hysteresis.ToCelsius()

	lowerBound := target - h
	upperBound := target + h

	wasOutside := !m.withinBand
	nowInside := lowerBound <= current && current <= upperBound

	fire := false
	if wasOutside && nowInside {
		switch m.config.Direction {
		case Both:
			fire = previous != current
		case Rising:
			fire = previous < current
		case Falling:
			fire = previous > current
		}
	}

	m.withinBand = nowInside
	m.previous = &sample

	return fire
}

func (e *Engine) notifyObservers(monitorID string, sample temperature.Sample) {
	e.mu.Lock()
	m, ok := e.index[monitorID]
	var config MonitorConfig
	if ok {
		config = m.config
	}
	observers := e.observers.snapshot(monitorID)
	e.mu.Unlock()

	if !ok || len(observers) == 0 {
		return
	}

	slog.Info("monitor fired", "id", monitorID, "name", config.Name, "reading", sample.Reading.String(), "observers", len(observers))

	for _, o := range observers {
		if err := invoke(o.callback, config, sample); err != nil {
			slog.Error("monitor callback failed", "monitor", monitorID, "observer", o.id, "error", err)
			continue
		}

		if config.NotificationMode == Once {
			e.RemoveCallback(monitorID, o.id)
		}
	}
}

func invoke(callback Callback, config MonitorConfig, sample temperature.Sample) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()

	return callback(config, sample)
}
