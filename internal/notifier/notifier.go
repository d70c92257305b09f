// Package notifier turns threshold engine firings into deliveries: SMS,
// the notification log, the alarm output and live websocket subscribers.
//
// The engine runs callbacks synchronously, so the callback returned by
// Dispatcher.Callback only enqueues the event. A single goroutine performs the
// slow work.
package notifier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("notification queue is full")

// NewDispatcher starts the delivery goroutine. Call CancelAndWait to stop it.
func NewDispatcher(config Config, hub *Hub) *Dispatcher {
	slog.Debug(">>NewDispatcher")
	defer slog.Debug("<<NewDispatcher")

	queueSize := config.QueueSize
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}

	alarmDuration := config.AlarmDuration
	if alarmDuration <= 0 {
		alarmDuration = DefaultAlarmDuration
	}

	if hub == nil {
		hub = NewHub(queueSize)
	}

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		wg:            &wg,
		ctx:           ctx,
		cancelFunc:    cancel,
		notifyCh:      make(chan Event, queueSize),
		store:         config.Store,
		alarm:         config.Alarm,
		alarmDuration: alarmDuration,
		hub:           hub,
	}

	// a nil *notify.Notify must not end up as a non-nil Sender
	if config.Notifier != nil {
		d.sender = config.Notifier
	}

	d.wg.Add(1)
	go d.monitorNotifications()

	return d
}

// CancelAndWait stops the delivery goroutine and waits for it to exit.
// Queued events that were not delivered yet are dropped.
func (d *Dispatcher) CancelAndWait() {
	d.cancelFunc()
	d.wg.Wait()
}

func (d *Dispatcher) Hub() *Hub {
	return d.hub
}

// Callback returns an engine callback that queues the firing for delivery.
func (d *Dispatcher) Callback() threshold.Callback {
	return func(config threshold.MonitorConfig, sample temperature.Sample) error {
		return d.Enqueue(NewEvent(config, sample))
	}
}

// Enqueue hands an event to the delivery goroutine without blocking.
func (d *Dispatcher) Enqueue(event Event) error {
	select {
	case d.notifyCh <- event:
		return nil
	default:
		slog.Warn("notification queue is full, dropping event", "monitor", event.MonitorID)
		return ErrQueueFull
	}
}

func NewEvent(config threshold.MonitorConfig, sample temperature.Sample) Event {
	return Event{
		MonitorID:    config.ID,
		Name:         config.Name,
		Description:  config.Description,
		Direction:    config.Direction.String(),
		TargetC:      config.TargetTemp.ToCelsius(),
		TemperatureC: sample.Reading.ToCelsius(),
		TemperatureF: sample.Reading.ToFahrenheit(),
		CapturedAt:   sample.CapturedAt,
	}
}

// Message renders the event as the text sent to users.
func (e Event) Message() string {
	label := e.Name
	if len(label) == 0 {
		label = e.MonitorID
	}

	msg := fmt.Sprintf("%s: temperature %.1fC / %.1fF reached target %.1fC (%s)", label, e.TemperatureC, e.TemperatureF, e.TargetC, e.Direction)
	if len(e.Description) != 0 {
		msg = fmt.Sprintf("%s - %s", msg, e.Description)
	}

	return msg
}

func (d *Dispatcher) monitorNotifications() {
	slog.Debug(">>monitorNotifications")
	defer slog.Debug("<<monitorNotifications")

	defer d.wg.Done()

	// leave the alarm off when we stop
	defer d.turnAlarmOff()

	for {
		select {
		case <-d.ctx.Done():
			slog.Debug("monitorNotifications: context done")
			return

		case event, ok := <-d.notifyCh:
			if !ok {
				slog.Error("The notification channel was closed")
				return
			}

			d.deliver(event)
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	slog.Info("delivering notification", "monitor", event.MonitorID, "name", event.Name, "temperature_c", event.TemperatureC)

	d.hub.Broadcast(event)
	d.saveEvent(event)
	d.pulseAlarm()

	// Send the SMS
	if d.sender != nil {
		err := d.sender.Send(d.ctx, NotificationSubject, event.Message())
		if err != nil {
			slog.Error("failed to send message", "error", err, "message", event.Message())
		}
	} else {
		slog.Debug("Notifier is not registered for notifications")
	}
}

func (d *Dispatcher) saveEvent(event Event) {
	if d.store == nil {
		return
	}

	arg := database.SaveNotificationParams{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		MonitorID:    event.MonitorID,
		MonitorName:  sql.NullString{String: event.Name, Valid: len(event.Name) != 0},
		Direction:    event.Direction,
		TargetC:      event.TargetC,
		TemperatureC: event.TemperatureC,
		CapturedAt:   event.CapturedAt.UTC(),
	}

	if _, err := d.store.SaveNotification(d.ctx, arg); err != nil {
		slog.Error("failed to save the notification", "error", err, "monitor", event.MonitorID)
	}
}

// pulseAlarm turns the alarm on for alarmDuration. A new event while the alarm
// is on restarts the timer. Only the timer of the latest pulse turns the alarm
// off, and it is armed even when TurnOn fails so an alarm left on by an
// earlier pulse still goes off.
func (d *Dispatcher) pulseAlarm() {
	if d.alarm == nil {
		return
	}

	d.alarmMu.Lock()
	defer d.alarmMu.Unlock()

	if d.alarmCancel != nil {
		d.alarmCancel()
	}

	d.alarmGeneration++
	alarmCtx, cancel := context.WithTimeout(d.ctx, d.alarmDuration)
	d.alarmCancel = cancel

	if err := d.alarm.TurnOn(); err != nil {
		slog.Error("Failed to turn the alarm on", "error", err)
	}

	d.wg.Add(1)
	go d.alarmOffTimer(alarmCtx, cancel, d.alarmGeneration)
}

func (d *Dispatcher) alarmOffTimer(ctx context.Context, cancel context.CancelFunc, generation uint64) {
	defer d.wg.Done()
	defer cancel()

	<-ctx.Done()

	d.alarmMu.Lock()
	defer d.alarmMu.Unlock()

	// a newer pulse owns the alarm unless we are stopping
	if generation != d.alarmGeneration && d.ctx.Err() == nil {
		return
	}

	d.turnAlarmOff()
}

func (d *Dispatcher) turnAlarmOff() {
	if d.alarm == nil {
		return
	}

	if err := d.alarm.TurnOff(); err != nil {
		slog.Error("Failed to turn the alarm off", "error", err)
	}
}
