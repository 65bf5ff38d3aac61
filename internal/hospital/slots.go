package hospital

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func newDoctor(id uuid.UUID, in DoctorInput) *Doctor {
	return &Doctor{
		ID:              id,
		Name:            strings.TrimSpace(in.Name),
		Specialization:  in.Specialization,
		Phone:           in.Phone,
		Email:           in.Email,
		ExperienceYears: in.ExperienceYears,
		Qualification:   in.Qualification,
		Department:      in.Department,
		JoinedAt:        time.Now().UTC(),
		Active:          true,
		ConsultationFee: decimal.Zero,
		Patients:        []uuid.UUID{},
		Appointments:    []uuid.UUID{},
		Schedule:        schedule.NewRegistry(),
	}
}

// SetConsultationFee reports a rejection for negative fees instead of failing.
func (h *Hospital) SetConsultationFee(ctx context.Context, doctorID uuid.UUID, fee decimal.Decimal) (outcome.Result, error) {
	var res outcome.Result
	err := h.mutate(ctx, doctorKey(doctorID), func() error {
		d, ok := h.doctors[doctorID]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "doctor %s not found", doctorID)
		}
		if fee.IsNegative() {
			res = outcome.Rejected("consultation fee cannot be negative")
			return nil
		}
		d.ConsultationFee = fee
		res = outcome.OK("consultation fee set to $%s", fee.StringFixed(2))
		return nil
	})
	return res, err
}

// withSchedule runs fn on the doctor's registry under the doctor lock.
func (h *Hospital) withSchedule(ctx context.Context, doctorID uuid.UUID, fn func(d *Doctor) error) error {
	return h.mutate(ctx, doctorKey(doctorID), func() error {
		d, ok := h.doctors[doctorID]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "doctor %s not found", doctorID)
		}
		return fn(d)
	})
}

func (h *Hospital) AddSlot(ctx context.Context, doctorID uuid.UUID, date string, w schedule.Window, capacity int) (uuid.UUID, error) {
	var slotID uuid.UUID
	err := h.withSchedule(ctx, doctorID, func(d *Doctor) error {
		id, err := d.Schedule.AddSlot(date, w, capacity)
		slotID = id
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	h.logEvent(ctx, EventSlotAdded, nil, ptr(doctorID), map[string]any{
		"slot_id":  slotID.String(),
		"date":     date,
		"window":   w.String(),
		"capacity": capacity,
	})
	return slotID, nil
}

func (h *Hospital) RemoveSlot(ctx context.Context, doctorID uuid.UUID, date string, slotID uuid.UUID) error {
	err := h.withSchedule(ctx, doctorID, func(d *Doctor) error {
		return d.Schedule.RemoveSlot(date, slotID)
	})
	if err != nil {
		return err
	}

	h.logEvent(ctx, EventSlotRemoved, nil, ptr(doctorID), map[string]any{
		"slot_id": slotID.String(),
		"date":    date,
	})
	return nil
}

// BookSlot takes a unit of the slot for an existing, active patient and adds
// the patient to the doctor's patient list. No appointment is created.
func (h *Hospital) BookSlot(ctx context.Context, doctorID uuid.UUID, date string, slotID, patientID uuid.UUID) error {
	err := h.withSchedule(ctx, doctorID, func(d *Doctor) error {
		p, ok := h.patients[patientID]
		if !ok {
			return outcome.Invalid(outcome.ErrNotFound, "patient %s not found", patientID)
		}
		if !p.Active {
			return outcome.Invalid(outcome.ErrInactive, "patient %s is deactivated", patientID)
		}
		if !d.Active {
			return outcome.Invalid(outcome.ErrInactive, "doctor %s is deactivated", doctorID)
		}
		if err := d.Schedule.Book(date, slotID, patientID); err != nil {
			return err
		}
		d.addPatient(patientID)
		return nil
	})
	if err != nil {
		h.log.WithError(err).WithField("doctor_id", doctorID).WithField("slot_id", slotID).Debug("slot booking refused")
		return err
	}

	h.logEvent(ctx, EventSlotBooked, nil, ptr(doctorID), map[string]any{
		"slot_id":    slotID.String(),
		"date":       date,
		"patient_id": patientID.String(),
	})
	return nil
}

func (h *Hospital) CancelSlot(ctx context.Context, doctorID uuid.UUID, date string, slotID, patientID uuid.UUID) error {
	err := h.withSchedule(ctx, doctorID, func(d *Doctor) error {
		return d.Schedule.Cancel(date, slotID, patientID)
	})
	if err != nil {
		return err
	}

	h.logEvent(ctx, EventSlotCancelled, nil, ptr(doctorID), map[string]any{
		"slot_id":    slotID.String(),
		"date":       date,
		"patient_id": patientID.String(),
	})
	return nil
}

// AvailableSlots lists the doctor's slots on date that still have room.
func (h *Hospital) AvailableSlots(doctorID uuid.UUID, date string) ([]schedule.Availability, error) {
	if err := schedule.ValidateDate(date); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.doctors[doctorID]
	if !ok {
		return nil, outcome.Reject(outcome.ErrNotFound, "doctor %s not found", doctorID)
	}
	out := slices.Collect(d.Schedule.Available(date))
	if out == nil {
		out = []schedule.Availability{}
	}
	return out, nil
}
