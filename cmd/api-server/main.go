package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/api"
	"github.com/hackgods/clinic-scheduling/internal/app"
	"github.com/hackgods/clinic-scheduling/internal/config"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}
	log := config.NewLogger(cfg)
	log.WithField("env", cfg.Env).WithField("http_port", cfg.HTTPPort).Info("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(rootCtx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("backend setup failed")
	}
	defer rt.Close()

	h, err := rt.LoadHospital(rootCtx)
	if err != nil {
		log.WithError(err).Fatal("restore failed")
	}

	sweeper, err := app.ScheduleSweep(cfg.NoShowSchedule, log, func() {
		_, _ = app.SweepMissed(rootCtx, h, log)
	})
	if err != nil {
		log.WithError(err).Fatal("invalid NOSHOW_SCHEDULE")
	}

	routerCfg := api.RouterConfig{
		Hospital: h,
		PgPool:   rt.Pool,
		Redis:    rt.Redis,
		Logger:   log,
		Env:      cfg.Env,
		Version:  version,
	}
	if rt.Events != nil {
		routerCfg.Events = rt.Events
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server failed")
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	<-sweeper.Stop().Done()

	if err := rt.SaveHospital(shutdownCtx, h); err != nil {
		log.WithError(err).Error("final snapshot failed")
	}
	log.Info("api-server stopped")
}
