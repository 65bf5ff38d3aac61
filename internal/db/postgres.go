package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Schema is implemented by the postgres-backed components that own a table.
type Schema interface {
	EnsureSchema(ctx context.Context) error
}

// ConnectPostgres opens a pool and pings it before handing it out.
func ConnectPostgres(ctx context.Context, dsn string, log *logrus.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.WithField("host", cfg.ConnConfig.Host).WithField("database", cfg.ConnConfig.Database).Info("postgres connected")
	return pool, nil
}

// Migrate creates the tables of every given component.
func Migrate(ctx context.Context, schemas ...Schema) error {
	for _, s := range schemas {
		if err := s.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	return nil
}
