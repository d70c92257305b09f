package monitors

import (
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
)

type (
	MonitorRegistry interface {
		AddConfig(config threshold.MonitorConfig) (string, error)
		RemoveConfig(id string)
		GetConfigs() []threshold.MonitorConfig
		GetConfig(id string) (threshold.MonitorConfig, bool)
		AddCallback(monitorID string, callback threshold.Callback) string
		RemoveCallback(monitorID, observerID string)
	}

	Handler struct {
		registry MonitorRegistry
		callback threshold.Callback
	}

	// MonitorRequest uses pointers so missing fields can be told apart from
	// the zero value of the enums.
	MonitorRequest struct {
		Name             string                      `json:"name"`
		Description      string                      `json:"description"`
		TargetTemp       *temperature.Temperature    `json:"target_temp"`
		Direction        *threshold.Direction        `json:"direction"`
		NotificationMode *threshold.NotificationMode `json:"notification_mode"`
		Hysteresis       *threshold.Hysteresis       `json:"hysteresis"`
	}

	MonitorResponse struct {
		Monitor    threshold.MonitorConfig `json:"monitor"`
		ObserverID string                  `json:"observer_id,omitempty"`
	}

	ObserverResponse struct {
		MonitorID  string `json:"monitor_id"`
		ObserverID string `json:"observer_id"`
	}
)
