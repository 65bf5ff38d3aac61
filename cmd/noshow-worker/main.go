package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-scheduling/internal/app"
	"github.com/hackgods/clinic-scheduling/internal/config"
)

// noshow-worker sweeps the stored snapshot on a cron schedule while the
// api-server is down. A running api-server sweeps its own state.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}
	log := config.NewLogger(cfg)
	log.WithField("env", cfg.Env).WithField("schedule", cfg.NoShowSchedule).Info("noshow-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(rootCtx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("backend setup failed")
	}
	defer rt.Close()

	if *once {
		runOnce(rootCtx, rt, log)
		return
	}

	// Run once at startup
	runOnce(rootCtx, rt, log)

	c, err := app.ScheduleSweep(cfg.NoShowSchedule, log, func() { runOnce(rootCtx, rt, log) })
	if err != nil {
		log.WithError(err).Fatal("invalid NOSHOW_SCHEDULE")
	}

	<-rootCtx.Done()
	log.Info("shutdown signal received, stopping noshow-worker")
	<-c.Stop().Done()
}

func runOnce(ctx context.Context, rt *app.Runtime, log *logrus.Logger) {
	h, err := rt.LoadHospital(ctx)
	if err != nil {
		log.WithError(err).Error("load failed")
		return
	}
	n, err := app.SweepMissed(ctx, h, log)
	if err != nil || n == 0 {
		return
	}
	if err := rt.SaveHospital(ctx, h); err != nil {
		log.WithError(err).Error("save failed")
	}
}
