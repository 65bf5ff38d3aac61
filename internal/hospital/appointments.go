package hospital

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// CreateAppointment records a Scheduled appointment between an active
// patient and an active doctor. Broken references are caller errors.
func (h *Hospital) CreateAppointment(ctx context.Context, d appointment.Details) (*appointment.Appointment, error) {
	appt, err := appointment.New(d)
	if err != nil {
		return nil, err
	}

	err = h.mutate(ctx, doctorKey(d.DoctorID), func() error {
		p, ok := h.patients[d.PatientID]
		if !ok {
			return outcome.Invalid(outcome.ErrNotFound, "patient %s not found", d.PatientID)
		}
		doc, ok := h.doctors[d.DoctorID]
		if !ok {
			return outcome.Invalid(outcome.ErrNotFound, "doctor %s not found", d.DoctorID)
		}
		if !p.Active {
			return outcome.Invalid(outcome.ErrInactive, "patient %s is deactivated", d.PatientID)
		}
		if !doc.Active {
			return outcome.Invalid(outcome.ErrInactive, "doctor %s is deactivated", d.DoctorID)
		}

		h.appointments[appt.ID] = appt
		p.addAppointment(appt.ID)
		doc.addAppointment(appt.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.log.WithField("appointment_id", appt.ID).WithField("doctor_id", d.DoctorID).Info("appointment created")
	h.logEvent(ctx, EventAppointmentCreated, ptr(appt.ID), ptr(d.DoctorID), map[string]any{
		"patient_id": d.PatientID.String(),
		"date":       d.Date,
		"window":     d.Window.String(),
		"type":       appt.Type,
	})
	return appt.Clone(), nil
}

func (h *Hospital) Appointment(id uuid.UUID) (*appointment.Appointment, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.appointments[id]
	if !ok {
		return nil, outcome.Reject(outcome.ErrNotFound, "appointment %s not found", id)
	}
	return a.Clone(), nil
}

// withAppointment runs fn under the appointment lock and returns a copy of
// the appointment as fn left it.
func (h *Hospital) withAppointment(ctx context.Context, id uuid.UUID, fn func(a *appointment.Appointment) error) (*appointment.Appointment, error) {
	var out *appointment.Appointment
	err := h.mutate(ctx, appointmentKey(id), func() error {
		a, ok := h.appointments[id]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "appointment %s not found", id)
		}
		if err := fn(a); err != nil {
			return err
		}
		out = a.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Hospital) transition(ctx context.Context, id uuid.UUID, op string, fn func(a *appointment.Appointment) error) (*appointment.Appointment, error) {
	var from appointment.Status
	a, err := h.withAppointment(ctx, id, func(a *appointment.Appointment) error {
		from = a.Status
		return fn(a)
	})
	if err != nil {
		h.log.WithError(err).WithField("appointment_id", id).WithField("op", op).Debug("appointment transition refused")
		return nil, err
	}

	h.logEvent(ctx, EventAppointmentStatus, ptr(a.ID), ptr(a.DoctorID), map[string]any{
		"op":   op,
		"from": string(from),
		"to":   string(a.Status),
	})
	return a, nil
}

func (h *Hospital) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return h.transition(ctx, id, "confirm", (*appointment.Appointment).Confirm)
}

func (h *Hospital) StartAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return h.transition(ctx, id, "start", (*appointment.Appointment).Start)
}

func (h *Hospital) CompleteAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return h.transition(ctx, id, "complete", (*appointment.Appointment).Complete)
}

func (h *Hospital) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*appointment.Appointment, error) {
	return h.transition(ctx, id, "cancel", func(a *appointment.Appointment) error {
		return a.Cancel(reason)
	})
}

func (h *Hospital) MarkNoShow(ctx context.Context, id uuid.UUID, note string) (*appointment.Appointment, error) {
	return h.transition(ctx, id, "no_show", func(a *appointment.Appointment) error {
		return a.MarkNoShow(note)
	})
}

// UpdateAppointmentStatus sets any status, but an appointment can only be
// reopened while its patient and doctor are still registered.
func (h *Hospital) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status appointment.Status, note string) (*appointment.Appointment, error) {
	return h.transition(ctx, id, "update_status", func(a *appointment.Appointment) error {
		if status.Valid() && !status.Terminal() {
			if err := h.requireReferences(a); err != nil {
				return err
			}
		}
		_, err := a.UpdateStatus(status, note)
		return err
	})
}

func (h *Hospital) RescheduleAppointment(ctx context.Context, id uuid.UUID, date string, w schedule.Window) (*appointment.Appointment, error) {
	var oldDate string
	var oldWindow schedule.Window
	a, err := h.withAppointment(ctx, id, func(a *appointment.Appointment) error {
		oldDate, oldWindow = a.Date, a.Window
		return a.Reschedule(date, w)
	})
	if err != nil {
		return nil, err
	}

	h.logEvent(ctx, EventAppointmentRescheduled, ptr(a.ID), ptr(a.DoctorID), map[string]any{
		"from": oldDate + " " + oldWindow.String(),
		"to":   date + " " + w.String(),
	})
	return a, nil
}

// update applies a soft operation. A missing appointment is still an error;
// the operation's own verdict comes back as the Result.
func (h *Hospital) update(ctx context.Context, id uuid.UUID, field string, fn func(a *appointment.Appointment) outcome.Result) (outcome.Result, error) {
	var res outcome.Result
	a, err := h.withAppointment(ctx, id, func(a *appointment.Appointment) error {
		res = fn(a)
		return nil
	})
	if err != nil {
		return outcome.Result{}, err
	}
	if res.Ok() {
		h.logEvent(ctx, EventAppointmentUpdated, ptr(a.ID), ptr(a.DoctorID), map[string]any{"field": field})
	}
	return res, nil
}

func (h *Hospital) AttachDiagnosis(ctx context.Context, id uuid.UUID, diagnosis string) (outcome.Result, error) {
	return h.update(ctx, id, "diagnosis", func(a *appointment.Appointment) outcome.Result {
		return a.AttachDiagnosis(diagnosis)
	})
}

func (h *Hospital) AttachPrescription(ctx context.Context, id uuid.UUID, prescription string) (outcome.Result, error) {
	return h.update(ctx, id, "prescription", func(a *appointment.Appointment) outcome.Result {
		return a.AttachPrescription(prescription)
	})
}

func (h *Hospital) SetFollowUpDate(ctx context.Context, id uuid.UUID, date string) (outcome.Result, error) {
	return h.update(ctx, id, "follow_up_date", func(a *appointment.Appointment) outcome.Result {
		return a.SetFollowUpDate(date)
	})
}

func (h *Hospital) SetAppointmentCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) (outcome.Result, error) {
	return h.update(ctx, id, "cost", func(a *appointment.Appointment) outcome.Result {
		return a.SetCost(cost)
	})
}

// filter returns copies of the matching appointments ordered by date, start
// time and creation.
func (h *Hospital) filter(fn func(*appointment.Appointment) bool) []*appointment.Appointment {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*appointment.Appointment, 0)
	for _, a := range h.appointments {
		if fn(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Window.Start != b.Window.Start {
			return a.Window.Start < b.Window.Start
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

func (h *Hospital) Appointments() []*appointment.Appointment {
	return h.filter(func(*appointment.Appointment) bool { return true })
}

func (h *Hospital) AppointmentsByDate(date string) []*appointment.Appointment {
	return h.filter(func(a *appointment.Appointment) bool { return a.Date == date })
}

func (h *Hospital) AppointmentsByDoctor(doctorID uuid.UUID) []*appointment.Appointment {
	return h.filter(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID })
}

func (h *Hospital) AppointmentsByPatient(patientID uuid.UUID) []*appointment.Appointment {
	return h.filter(func(a *appointment.Appointment) bool { return a.PatientID == patientID })
}

func (h *Hospital) AppointmentsByStatus(status appointment.Status) []*appointment.Appointment {
	return h.filter(func(a *appointment.Appointment) bool { return a.Status == status })
}

func (h *Hospital) UrgentAppointments() []*appointment.Appointment {
	return h.filter((*appointment.Appointment).IsUrgent)
}

func (h *Hospital) FollowUpAppointments() []*appointment.Appointment {
	return h.filter((*appointment.Appointment).IsFollowUp)
}

// MarkMissedAppointments moves Scheduled and Confirmed appointments dated
// before today to NoShow and returns how many it moved.
func (h *Hospital) MarkMissedAppointments(ctx context.Context, today string) (int, error) {
	if err := schedule.ValidateDate(today); err != nil {
		return 0, err
	}
	missed := h.filter(func(a *appointment.Appointment) bool {
		return (a.Status == appointment.StatusScheduled || a.Status == appointment.StatusConfirmed) && a.Date < today
	})

	n := 0
	for _, a := range missed {
		_, err := h.MarkNoShow(ctx, a.ID, "missed appointment")
		switch {
		case err == nil:
			n++
		case outcome.IsRejected(err):
			// moved on by someone else since the scan
		default:
			return n, err
		}
	}
	return n, nil
}
