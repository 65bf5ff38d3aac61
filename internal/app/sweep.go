package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

var today = func() string {
	return time.Now().UTC().Format(schedule.DateLayout)
}

// SweepMissed marks every appointment left open before today as a no-show.
func SweepMissed(ctx context.Context, h *hospital.Hospital, log *logrus.Logger) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := h.MarkMissedAppointments(runCtx, today())
	if err != nil {
		log.WithError(err).WithField("marked", n).Error("no-show sweep failed")
		return n, err
	}
	log.WithField("marked", n).WithField("took", time.Since(start).String()).Info("no-show sweep complete")
	return n, nil
}

// ScheduleSweep runs fn on spec, a cron expression or descriptor such as
// "@every 1m". The caller stops the returned scheduler.
func ScheduleSweep(spec string, log *logrus.Logger, fn func()) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, fn); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	c.Start()
	log.WithField("schedule", spec).Info("no-show sweep scheduled")
	return c, nil
}
