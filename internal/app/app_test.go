package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func openFileRuntime(t *testing.T) *Runtime {
	t.Helper()
	cfg := config.Config{
		HospitalName:  "Seeded General",
		LockBackend:   config.LockLocal,
		SnapshotStore: config.StoreFile,
		SnapshotDir:   t.TempDir(),
	}
	rt, err := Open(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt
}

func seedOptions() SeedOptions {
	return SeedOptions{
		Seed:                  42,
		Doctors:               3,
		Patients:              10,
		Days:                  2,
		StartDate:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AppointmentsPerDoctor: 4,
	}
}

func TestPopulate(t *testing.T) {
	h := hospital.New(hospital.Info{}, hospital.Options{Logger: quietLogger()})

	sum, err := Populate(context.Background(), h, seedOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Doctors)
	assert.Equal(t, 10, sum.Patients)
	assert.Equal(t, 3*2*6, sum.Slots)
	assert.LessOrEqual(t, sum.Appointments, 12)
	assert.Positive(t, sum.Appointments)

	stats := h.Statistics("2024-01-01")
	assert.Equal(t, sum.Slots, stats.TotalScheduleSlots)
	assert.Equal(t, sum.Appointments, stats.TotalAppointments)
	assert.Equal(t, sum.Appointments, stats.ByStatus[appointment.StatusScheduled])

	for _, d := range h.Doctors() {
		assert.True(t, d.ConsultationFee.IsPositive())
	}
}

func TestRuntimeSnapshotCycle(t *testing.T) {
	ctx := context.Background()
	rt := openFileRuntime(t)

	h, err := rt.LoadHospital(ctx)
	require.NoError(t, err)
	assert.Empty(t, h.Patients())
	assert.Equal(t, "Seeded General", h.Info().Name)

	sum, err := Populate(ctx, h, seedOptions())
	require.NoError(t, err)
	require.NoError(t, rt.SaveHospital(ctx, h))

	again, err := rt.LoadHospital(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Patients(), sum.Patients)
	assert.Len(t, again.Doctors(), sum.Doctors)
	assert.Len(t, again.Appointments(), sum.Appointments)
}

func TestSweepMissed(t *testing.T) {
	ctx := context.Background()
	rt := openFileRuntime(t)
	h := rt.NewHospital()

	_, err := Populate(ctx, h, seedOptions())
	require.NoError(t, err)
	open := len(h.AppointmentsByStatus(appointment.StatusScheduled))
	require.Positive(t, open)

	orig := today
	today = func() string { return "2024-02-01" }
	t.Cleanup(func() { today = orig })

	n, err := SweepMissed(ctx, h, rt.Log)
	require.NoError(t, err)
	assert.Equal(t, open, n)
	assert.Len(t, h.AppointmentsByStatus(appointment.StatusNoShow), open)
	assert.Empty(t, h.AppointmentsByStatus(appointment.StatusScheduled))

	n, err = SweepMissed(ctx, h, rt.Log)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduleSweepRejectsBadSpec(t *testing.T) {
	_, err := ScheduleSweep("every tuesday-ish", quietLogger(), func() {})
	assert.Error(t, err)

	c, err := ScheduleSweep("@every 1h", quietLogger(), func() {})
	require.NoError(t, err)
	<-c.Stop().Done()
}
