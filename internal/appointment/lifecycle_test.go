package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func newAppointment(t *testing.T, typ string) *Appointment {
	t.Helper()
	w, err := schedule.ParseWindow("09:00-09:30")
	require.NoError(t, err)
	a, err := New(Details{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2024-01-01",
		Window:    w,
		Type:      typ,
	})
	require.NoError(t, err)
	return a
}

func withClock(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestNew(t *testing.T) {
	a := newAppointment(t, "")
	assert.Equal(t, StatusScheduled, a.Status)
	assert.Equal(t, TypeRegular, a.Type)
	assert.True(t, a.Cost.IsZero())
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)

	_, err := New(Details{PatientID: uuid.New(), DoctorID: uuid.New(), Date: "tomorrow", Window: a.Window})
	assert.True(t, outcome.IsInvalid(err))
	_, err = New(Details{DoctorID: uuid.New(), Date: "2024-01-01", Window: a.Window})
	assert.True(t, outcome.IsInvalid(err))
}

func TestHappyPathThenCancelFails(t *testing.T) {
	a := newAppointment(t, "Regular")

	err := a.Complete()
	assert.ErrorIs(t, err, outcome.ErrState)
	assert.Equal(t, StatusScheduled, a.Status)

	require.NoError(t, a.Confirm())
	require.NoError(t, a.Start())
	require.NoError(t, a.Complete())
	assert.Equal(t, StatusCompleted, a.Status)
	assert.True(t, a.Status.Terminal())

	assert.ErrorIs(t, a.Cancel("changed mind"), outcome.ErrState)
	w, _ := schedule.ParseWindow("10:00-10:30")
	assert.ErrorIs(t, a.Reschedule("2024-01-02", w), outcome.ErrState)
	assert.Equal(t, StatusCompleted, a.Status)
}

func TestTransitionGuards(t *testing.T) {
	tests := []struct {
		name  string
		setup []func(*Appointment) error
		op    func(*Appointment) error
		want  Status
		fails bool
	}{
		{
			name: "start from scheduled",
			op:   (*Appointment).Start, want: StatusScheduled, fails: true,
		},
		{
			name: "confirm twice",
			setup: []func(*Appointment) error{(*Appointment).Confirm},
			op:    (*Appointment).Confirm, want: StatusConfirmed, fails: true,
		},
		{
			name: "complete from confirmed",
			setup: []func(*Appointment) error{(*Appointment).Confirm},
			op:    (*Appointment).Complete, want: StatusConfirmed, fails: true,
		},
		{
			name: "cancel scheduled",
			op:   func(a *Appointment) error { return a.Cancel("") }, want: StatusCancelled,
		},
		{
			name:  "cancel in progress",
			setup: []func(*Appointment) error{(*Appointment).Confirm, (*Appointment).Start},
			op:    func(a *Appointment) error { return a.Cancel("") }, want: StatusCancelled,
		},
		{
			name:  "cancel twice",
			setup: []func(*Appointment) error{func(a *Appointment) error { return a.Cancel("") }},
			op:    func(a *Appointment) error { return a.Cancel("") }, want: StatusCancelled, fails: true,
		},
		{
			name:  "no-show confirmed",
			setup: []func(*Appointment) error{(*Appointment).Confirm},
			op:    func(a *Appointment) error { return a.MarkNoShow("") }, want: StatusNoShow,
		},
		{
			name:  "cancel no-show",
			setup: []func(*Appointment) error{func(a *Appointment) error { return a.MarkNoShow("") }},
			op:    func(a *Appointment) error { return a.Cancel("") }, want: StatusNoShow, fails: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAppointment(t, "")
			for _, s := range tt.setup {
				require.NoError(t, s(a))
			}
			err := tt.op(a)
			if tt.fails {
				assert.ErrorIs(t, err, outcome.ErrState)
				assert.True(t, outcome.IsRejected(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, a.Status)
		})
	}
}

func TestCancelAppendsReason(t *testing.T) {
	a := newAppointment(t, "")
	withClock(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	a.Notes = "bring x-rays"

	require.NoError(t, a.Cancel("patient travelling"))
	assert.Equal(t, "bring x-rays\n2024-01-01 08:00:00: Cancelled - patient travelling", a.Notes)
}

func TestReschedule(t *testing.T) {
	a := newAppointment(t, "")
	require.NoError(t, a.Confirm())
	w, _ := schedule.ParseWindow("14:00-14:30")

	require.NoError(t, a.Reschedule("2024-02-01", w))
	assert.Equal(t, "2024-02-01", a.Date)
	assert.Equal(t, w, a.Window)
	assert.Equal(t, StatusConfirmed, a.Status)

	assert.True(t, outcome.IsInvalid(a.Reschedule("2024-13-01", w)))

	require.NoError(t, a.MarkNoShow(""))
	assert.NoError(t, a.Reschedule("2024-02-02", w), "no-show appointments may be rebooked")

	c := newAppointment(t, "")
	require.NoError(t, c.Cancel(""))
	assert.ErrorIs(t, c.Reschedule("2024-02-01", w), outcome.ErrState)
}

func TestUpdateStatusIsUnconditional(t *testing.T) {
	a := newAppointment(t, "")
	withClock(t, time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC))
	require.NoError(t, a.Cancel(""))

	old, err := a.UpdateStatus(StatusConfirmed, "reinstated by front desk")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, old)
	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Equal(t, "2024-01-01 09:15:00: reinstated by front desk", a.Notes)

	_, err = a.UpdateStatus(Status("lost"), "")
	assert.True(t, outcome.IsInvalid(err))
	assert.Equal(t, StatusConfirmed, a.Status)
}

func TestAttachments(t *testing.T) {
	a := newAppointment(t, "")

	res := a.AttachDiagnosis("flu")
	assert.False(t, res.Ok())
	assert.Equal(t, outcome.KindRejected, res.Kind)
	assert.Nil(t, a.Diagnosis)
	assert.False(t, a.AttachPrescription("rest").Ok())

	require.NoError(t, a.Confirm())
	require.NoError(t, a.Start())
	assert.True(t, a.AttachDiagnosis("flu").Ok())
	assert.True(t, a.AttachPrescription("rest").Ok())
	require.NotNil(t, a.Diagnosis)
	assert.Equal(t, "flu", *a.Diagnosis)

	assert.False(t, a.SetFollowUpDate("2024-02-01").Ok(), "follow-up needs completed")

	require.NoError(t, a.Complete())
	assert.True(t, a.AttachDiagnosis("influenza A").Ok())
	assert.Equal(t, "influenza A", *a.Diagnosis)

	res = a.SetFollowUpDate("next week")
	assert.Equal(t, outcome.KindInvalid, res.Kind)
	assert.True(t, a.SetFollowUpDate("2024-02-01").Ok())
	assert.Equal(t, "2024-02-01", *a.FollowUpDate)
}

func TestSetCost(t *testing.T) {
	a := newAppointment(t, "")

	res := a.SetCost(decimal.NewFromInt(-1))
	assert.Equal(t, outcome.KindRejected, res.Kind)
	assert.True(t, a.Cost.IsZero())

	res = a.SetCost(decimal.RequireFromString("150.5"))
	assert.True(t, res.Ok())
	assert.Equal(t, "appointment cost set to $150.50", res.Message)
	assert.True(t, a.Cost.Equal(decimal.RequireFromString("150.50")))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		typ      string
		urgent   bool
		followUp bool
	}{
		{"Emergency", true, false},
		{"URGENT", true, false},
		{"critical", true, false},
		{"Follow-Up", false, true},
		{"followup", false, true},
		{"Review", false, true},
		{"Regular", false, false},
		{"emergency follow-up", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			a := newAppointment(t, tt.typ)
			assert.Equal(t, tt.urgent, a.IsUrgent())
			assert.Equal(t, tt.followUp, a.IsFollowUp())
		})
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"Scheduled":   StatusScheduled,
		"In Progress": StatusInProgress,
		"in-progress": StatusInProgress,
		"No Show":     StatusNoShow,
		"cancelled":   StatusCancelled,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseStatus("archived")
	assert.ErrorIs(t, err, outcome.ErrInvalidInput)
}

func TestDetailedSummary(t *testing.T) {
	a := newAppointment(t, "Review")
	require.NoError(t, a.Confirm())
	require.NoError(t, a.Start())
	a.AttachDiagnosis("sprain")

	s := a.DetailedSummary()
	assert.Contains(t, s, "Status: In Progress")
	assert.Contains(t, s, "Time: 09:00-09:30")
	assert.Contains(t, s, "Cost: $0.00")
	assert.Contains(t, s, "Diagnosis: sprain")
	assert.NotContains(t, s, "Prescription:")
}

func TestClone(t *testing.T) {
	a := newAppointment(t, "")
	require.NoError(t, a.Confirm())
	require.NoError(t, a.Start())
	a.AttachDiagnosis("cold")

	c := a.Clone()
	*c.Diagnosis = "changed"
	assert.Equal(t, "cold", *a.Diagnosis)
}
