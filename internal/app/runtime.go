// Package app wires configuration into the backends the commands share.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/lock"
	"github.com/hackgods/clinic-scheduling/internal/snapshot"
)

// Runtime holds the backends selected by the configuration. Pool and Redis
// are nil when not configured.
type Runtime struct {
	Config config.Config
	Log    *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Events *hospital.PgEventRecorder
	Store  snapshot.Store
	Locker lock.Locker
}

func Open(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Log: log}

	if cfg.PostgresDSN != "" {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, log)
		cancel()
		if err != nil {
			return nil, err
		}
		rt.Pool = pool
		rt.Events = hospital.NewPgEventRecorder(pool)
	}

	switch cfg.SnapshotStore {
	case config.StorePostgres:
		pg := snapshot.NewPgStore(rt.Pool)
		if err := db.Migrate(ctx, rt.Events, pg); err != nil {
			rt.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		rt.Store = pg
	default:
		if rt.Events != nil {
			if err := db.Migrate(ctx, rt.Events); err != nil {
				rt.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		rt.Store = snapshot.NewFileStore(cfg.SnapshotDir)
	}

	switch cfg.LockBackend {
	case config.LockRedis:
		rdb, err := lock.NewRedisClient(ctx, lock.RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Redis = rdb
		rt.Locker = lock.NewRedisLocker(rdb, cfg.LockTTL)
		log.WithField("addr", cfg.RedisAddr).Info("redis locker enabled")
	default:
		rt.Locker = lock.NewLocalLocker()
	}

	return rt, nil
}

func (rt *Runtime) options() hospital.Options {
	opts := hospital.Options{Locker: rt.Locker, Logger: rt.Log}
	if rt.Events != nil {
		opts.Events = rt.Events
	}
	return opts
}

func (rt *Runtime) info() hospital.Info {
	return hospital.Info{Name: rt.Config.HospitalName}
}

// LoadHospital restores the last snapshot, or an empty hospital if none was
// saved yet.
func (rt *Runtime) LoadHospital(ctx context.Context) (*hospital.Hospital, error) {
	snap, err := rt.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	h, err := snapshot.Import(snap, rt.info(), rt.options())
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	rt.Log.WithFields(logrus.Fields{
		"patients":     len(snap.Patients),
		"doctors":      len(snap.Doctors),
		"appointments": len(snap.Appointments),
	}).Info("snapshot loaded")
	return h, nil
}

func (rt *Runtime) NewHospital() *hospital.Hospital {
	return hospital.New(rt.info(), rt.options())
}

func (rt *Runtime) SaveHospital(ctx context.Context, h *hospital.Hospital) error {
	snap := snapshot.Export(h)
	if err := rt.Store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	rt.Log.WithFields(logrus.Fields{
		"patients":     len(snap.Patients),
		"doctors":      len(snap.Doctors),
		"appointments": len(snap.Appointments),
	}).Info("snapshot saved")
	return nil
}

func (rt *Runtime) Close() {
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			rt.Log.WithError(err).Warn("error closing redis")
		}
	}
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}
