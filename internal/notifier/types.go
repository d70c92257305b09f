package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/sensor"
	"github.com/nikoksr/notify"
)

const (
	DefaultQueueSize     = 64
	DefaultAlarmDuration = 10 * time.Second
	NotificationSubject  = "Thermometer Notification"
)

type (
	// Event is a monitor firing, flattened for delivery.
	Event struct {
		MonitorID    string    `json:"monitor_id"`
		Name         string    `json:"name,omitempty"`
		Description  string    `json:"description,omitempty"`
		Direction    string    `json:"direction"`
		TargetC      float64   `json:"target_c"`
		TemperatureC float64   `json:"temperature_c"`
		TemperatureF float64   `json:"temperature_f"`
		CapturedAt   time.Time `json:"captured_at"`
	}

	EventStore interface {
		SaveNotification(ctx context.Context, arg database.SaveNotificationParams) (database.Notification, error)
	}

	Sender interface {
		Send(ctx context.Context, subject, message string) error
	}

	Config struct {
		// Notifier sends SMS through the configured services. Optional.
		Notifier *notify.Notify
		Store    EventStore
		Alarm    sensor.Alarm
		// AlarmDuration is how long the alarm stays on per event.
		AlarmDuration time.Duration
		QueueSize     int
	}

	// Dispatcher delivers monitor events off the engine's goroutine.
	Dispatcher struct {
		wg         *sync.WaitGroup
		ctx        context.Context
		cancelFunc context.CancelFunc
		notifyCh   chan Event

		sender        Sender
		store         EventStore
		alarm         sensor.Alarm
		alarmDuration time.Duration
		hub           *Hub

		alarmMu         sync.Mutex
		alarmCancel     context.CancelFunc
		alarmGeneration uint64
	}

	// Hub fans events out to live subscribers such as websocket clients.
	Hub struct {
		mu          sync.Mutex
		subscribers map[int]chan Event
		next        int
		bufferSize  int
	}
)
