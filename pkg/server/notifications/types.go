package notifications

import (
	"context"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/notifier"
)

const (
	DefaultLimit      = 50
	MaxLimit          = 500
	HeartbeatInterval = 30 * time.Second
)

type (
	NotificationStore interface {
		FindRecentNotifications(ctx context.Context, limit int32) ([]database.Notification, error)
	}

	Notification struct {
		ID           string    `json:"id"`
		CreatedAt    time.Time `json:"created_at"`
		MonitorID    string    `json:"monitor_id"`
		MonitorName  string    `json:"monitor_name,omitempty"`
		Direction    string    `json:"direction"`
		TargetC      float64   `json:"target_c"`
		TemperatureC float64   `json:"temperature_c"`
		CapturedAt   time.Time `json:"captured_at"`
	}

	Handler struct {
		store          NotificationStore
		hub            *notifier.Hub
		originPatterns []string
		heartbeat      time.Duration
	}
)
