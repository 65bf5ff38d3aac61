package hospital

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgEventRecorder appends events to the event_logs table.
type PgEventRecorder struct {
	pool *pgxpool.Pool
}

func NewPgEventRecorder(pool *pgxpool.Pool) *PgEventRecorder {
	return &PgEventRecorder{pool: pool}
}

const createEventLogs = `
	CREATE TABLE IF NOT EXISTS event_logs (
		id             BIGSERIAL PRIMARY KEY,
		event_type     TEXT NOT NULL,
		appointment_id UUID,
		doctor_id      UUID,
		payload        JSONB,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

func (r *PgEventRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createEventLogs); err != nil {
		return fmt.Errorf("create event_logs: %w", err)
	}
	return nil
}

func (r *PgEventRecorder) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, doctor_id, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, ev.EventType, ev.AppointmentID, ev.DoctorID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

// RecentEvents returns the latest events, newest first.
func (r *PgEventRecorder) RecentEvents(ctx context.Context, limit int) ([]EventLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, appointment_id, doctor_id, payload, created_at
		FROM event_logs
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query event logs: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EventLog, error) {
		var ev EventLog
		err := row.Scan(&ev.ID, &ev.EventType, &ev.AppointmentID, &ev.DoctorID, &ev.Payload, &ev.CreatedAt)
		return ev, err
	})
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
