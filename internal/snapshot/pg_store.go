package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps each collection as one JSONB row of hospital_snapshots.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const createSnapshots = `
	CREATE TABLE IF NOT EXISTS hospital_snapshots (
		collection TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createSnapshots); err != nil {
		return fmt.Errorf("create hospital_snapshots: %w", err)
	}
	return nil
}

// Save writes all collections in one transaction.
func (s *PgStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	collections := []struct {
		name string
		data any
	}{
		{CollectionPatients, snap.Patients},
		{CollectionDoctors, snap.Doctors},
		{CollectionAppointments, snap.Appointments},
	}
	for _, c := range collections {
		raw, err := json.Marshal(c.data)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.name, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO hospital_snapshots (collection, payload, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (collection)
			DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
		`, c.name, raw)
		if err != nil {
			return fmt.Errorf("save %s: %w", c.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

func (s *PgStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT collection, payload FROM hospital_snapshots`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query snapshots: %w", err)
	}

	type row struct {
		collection string
		payload    []byte
	}
	loaded, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (row, error) {
		var out row
		err := r.Scan(&out.collection, &out.payload)
		return out, err
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshots: %w", err)
	}

	snap := Empty()
	for _, r := range loaded {
		var dst any
		switch r.collection {
		case CollectionPatients:
			dst = &snap.Patients
		case CollectionDoctors:
			dst = &snap.Doctors
		case CollectionAppointments:
			dst = &snap.Appointments
		default:
			continue
		}
		if err := json.Unmarshal(r.payload, dst); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", r.collection, err)
		}
	}
	snap.normalize()
	return snap, nil
}
