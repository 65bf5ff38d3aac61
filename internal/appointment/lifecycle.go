package appointment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func (a *Appointment) transition(from, to Status, reason string) error {
	if a.Status != from {
		return outcome.Reject(outcome.ErrState, "%s: appointment is %s", reason, a.Status.Label())
	}
	a.Status = to
	a.touch()
	return nil
}

func (a *Appointment) touch() {
	a.UpdatedAt = now()
}

func (a *Appointment) appendNote(note string) {
	if note == "" {
		return
	}
	entry := a.UpdatedAt.Format(time.DateTime) + ": " + note
	if a.Notes == "" {
		a.Notes = entry
		return
	}
	a.Notes += "\n" + entry
}

func (a *Appointment) Confirm() error {
	return a.transition(StatusScheduled, StatusConfirmed, "appointment must be scheduled before confirming")
}

func (a *Appointment) Start() error {
	return a.transition(StatusConfirmed, StatusInProgress, "appointment must be confirmed before starting")
}

func (a *Appointment) Complete() error {
	return a.transition(StatusInProgress, StatusCompleted, "appointment must be in progress before completing")
}

// Cancel moves any non-terminal appointment to Cancelled and logs the reason.
func (a *Appointment) Cancel(reason string) error {
	if a.Status.Terminal() {
		return outcome.Reject(outcome.ErrState, "appointment is already %s", a.Status.Label())
	}
	a.Status = StatusCancelled
	a.touch()
	if reason != "" {
		a.appendNote("Cancelled - " + reason)
	}
	return nil
}

// MarkNoShow records that the patient never turned up.
func (a *Appointment) MarkNoShow(note string) error {
	if a.Status.Terminal() {
		return outcome.Reject(outcome.ErrState, "appointment is already %s", a.Status.Label())
	}
	a.Status = StatusNoShow
	a.touch()
	if note != "" {
		a.appendNote("No show - " + note)
	}
	return nil
}

// Reschedule moves the appointment keeping its status. Cancelled and
// completed appointments stay where they are.
func (a *Appointment) Reschedule(date string, w schedule.Window) error {
	if a.Status == StatusCancelled || a.Status == StatusCompleted {
		return outcome.Reject(outcome.ErrState, "cannot reschedule %s appointments", strings.ToLower(a.Status.Label()))
	}
	if err := schedule.ValidateDate(date); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}
	a.Date = date
	a.Window = w
	a.touch()
	return nil
}

// UpdateStatus sets any known status without checking the lifecycle.
func (a *Appointment) UpdateStatus(s Status, note string) (Status, error) {
	if !s.Valid() {
		return "", outcome.Invalid(outcome.ErrInvalidInput, "unknown appointment status %q", s)
	}
	old := a.Status
	a.Status = s
	a.touch()
	a.appendNote(note)
	return old, nil
}

func (a *Appointment) inConsultation() bool {
	return a.Status == StatusInProgress || a.Status == StatusCompleted
}

func (a *Appointment) AttachDiagnosis(diagnosis string) outcome.Result {
	if !a.inConsultation() {
		return outcome.Rejected("cannot add diagnosis to appointment with status %s", a.Status.Label())
	}
	a.Diagnosis = &diagnosis
	a.touch()
	return outcome.OK("diagnosis added")
}

func (a *Appointment) AttachPrescription(prescription string) outcome.Result {
	if !a.inConsultation() {
		return outcome.Rejected("cannot add prescription to appointment with status %s", a.Status.Label())
	}
	a.Prescription = &prescription
	a.touch()
	return outcome.OK("prescription added")
}

func (a *Appointment) SetFollowUpDate(date string) outcome.Result {
	if a.Status != StatusCompleted {
		return outcome.Rejected("can only set follow-up date for completed appointments")
	}
	if err := schedule.ValidateDate(date); err != nil {
		return outcome.InvalidResult("%s", err.Error())
	}
	a.FollowUpDate = &date
	a.touch()
	return outcome.OK("follow-up date set to %s", date)
}

func (a *Appointment) SetCost(cost decimal.Decimal) outcome.Result {
	if cost.IsNegative() {
		return outcome.Rejected("cost cannot be negative")
	}
	a.Cost = cost
	a.touch()
	return outcome.OK("appointment cost set to $%s", cost.StringFixed(2))
}

var (
	urgentTypes   = []string{"emergency", "urgent", "critical"}
	followUpTypes = []string{"follow-up", "followup", "review"}
)

func matchesType(typ string, set []string) bool {
	t := strings.ToLower(strings.TrimSpace(typ))
	for _, s := range set {
		if t == s {
			return true
		}
	}
	return false
}

func (a *Appointment) IsUrgent() bool {
	return matchesType(a.Type, urgentTypes)
}

func (a *Appointment) IsFollowUp() bool {
	return matchesType(a.Type, followUpTypes)
}
