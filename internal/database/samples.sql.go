package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const saveSample = `-- name: SaveSample :one
INSERT INTO samples (id, captured_at, value, unit, temperature_c)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, captured_at, value, unit, temperature_c
`

type SaveSampleParams struct {
	ID           uuid.UUID
	CapturedAt   time.Time
	Value        float64
	Unit         string
	TemperatureC float64
}

func (q *Queries) SaveSample(ctx context.Context, arg SaveSampleParams) (Sample, error) {
	row := q.db.QueryRowContext(ctx, saveSample,
		arg.ID,
		arg.CapturedAt,
		arg.Value,
		arg.Unit,
		arg.TemperatureC,
	)
	var i Sample
	err := row.Scan(
		&i.ID,
		&i.CapturedAt,
		&i.Value,
		&i.Unit,
		&i.TemperatureC,
	)
	return i, err
}

const findRecentSamples = `-- name: FindRecentSamples :many
SELECT id, captured_at, value, unit, temperature_c FROM samples
ORDER BY captured_at DESC
LIMIT $1
`

func (q *Queries) FindRecentSamples(ctx context.Context, limit int32) ([]Sample, error) {
	rows, err := q.db.QueryContext(ctx, findRecentSamples, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Sample
	for rows.Next() {
		var i Sample
		if err := rows.Scan(
			&i.ID,
			&i.CapturedAt,
			&i.Value,
			&i.Unit,
			&i.TemperatureC,
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
