package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	MonitorID    string
	MonitorName  sql.NullString
	Direction    string
	TargetC      float64
	TemperatureC float64
	CapturedAt   time.Time
}

type Sample struct {
	ID           uuid.UUID
	CapturedAt   time.Time
	Value        float64
	Unit         string
	TemperatureC float64
}
