package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const saveNotification = `-- name: SaveNotification :one
INSERT INTO notifications (id, created_at, monitor_id, monitor_name, direction, target_c, temperature_c, captured_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, monitor_id, monitor_name, direction, target_c, temperature_c, captured_at
`

type SaveNotificationParams struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	MonitorID    string
	MonitorName  sql.NullString
	Direction    string
	TargetC      float64
	TemperatureC float64
	CapturedAt   time.Time
}

func (q *Queries) SaveNotification(ctx context.Context, arg SaveNotificationParams) (Notification, error) {
	row := q.db.QueryRowContext(ctx, saveNotification,
		arg.ID,
		arg.CreatedAt,
		arg.MonitorID,
		arg.MonitorName,
		arg.Direction,
		arg.TargetC,
		arg.TemperatureC,
		arg.CapturedAt,
	)
	var i Notification
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.MonitorID,
		&i.MonitorName,
		&i.Direction,
		&i.TargetC,
		&i.TemperatureC,
		&i.CapturedAt,
	)
	return i, err
}

const findRecentNotifications = `-- name: FindRecentNotifications :many
SELECT id, created_at, monitor_id, monitor_name, direction, target_c, temperature_c, captured_at FROM notifications
ORDER BY created_at DESC
LIMIT $1
`

func (q *Queries) FindRecentNotifications(ctx context.Context, limit int32) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, findRecentNotifications, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Notification
	for rows.Next() {
		var i Notification
		if err := rows.Scan(
			&i.ID,
			&i.CreatedAt,
			&i.MonitorID,
			&i.MonitorName,
			&i.Direction,
			&i.TargetC,
			&i.TemperatureC,
			&i.CapturedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
