package hospital

import (
	"slices"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// The Restore methods load records that already carry their ids, as read
// back from a snapshot. They bypass locking and are meant to run before the
// hospital is shared.

func (h *Hospital) RestorePatient(p Patient) error {
	if p.ID == uuid.Nil {
		return outcome.Invalid(outcome.ErrInvalidInput, "patient id is required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.patients[p.ID]; ok {
		return outcome.Invalid(outcome.ErrDuplicate, "patient %s already loaded", p.ID)
	}
	c := p.clone()
	if c.Appointments == nil {
		c.Appointments = []uuid.UUID{}
	}
	if c.Prescriptions == nil {
		c.Prescriptions = []Prescription{}
	}
	h.patients[p.ID] = c
	return nil
}

// SlotRecord is one slot of a restored schedule.
type SlotRecord struct {
	Date string
	Slot schedule.Slot
}

func (h *Hospital) RestoreDoctor(d Doctor, slots []SlotRecord) error {
	if d.ID == uuid.Nil {
		return outcome.Invalid(outcome.ErrInvalidInput, "doctor id is required")
	}
	reg := schedule.NewRegistry()
	for _, s := range slots {
		if err := reg.Restore(s.Date, s.Slot); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.doctors[d.ID]; ok {
		return outcome.Invalid(outcome.ErrDuplicate, "doctor %s already loaded", d.ID)
	}
	c := d
	c.Patients = slices.Clone(d.Patients)
	c.Appointments = slices.Clone(d.Appointments)
	if c.Patients == nil {
		c.Patients = []uuid.UUID{}
	}
	if c.Appointments == nil {
		c.Appointments = []uuid.UUID{}
	}
	c.Schedule = reg
	h.doctors[d.ID] = &c
	return nil
}

// RestoreAppointment requires the patient and doctor of an open appointment
// to be restored first.
func (h *Hospital) RestoreAppointment(a appointment.Appointment) error {
	if a.ID == uuid.Nil {
		return outcome.Invalid(outcome.ErrInvalidInput, "appointment id is required")
	}
	if !a.Status.Valid() {
		return outcome.Invalid(outcome.ErrInvalidInput, "appointment %s has unknown status %q", a.ID, a.Status)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.appointments[a.ID]; ok {
		return outcome.Invalid(outcome.ErrDuplicate, "appointment %s already loaded", a.ID)
	}
	// Closed appointments may outlive a removed patient or doctor, so only
	// open ones must point at a loaded record.
	if !a.Status.Terminal() {
		if err := h.requireReferences(&a); err != nil {
			return err
		}
	}
	h.appointments[a.ID] = a.Clone()
	return nil
}

// requireReferences checks that the patient and doctor of a are loaded.
// Callers hold h.mu.
func (h *Hospital) requireReferences(a *appointment.Appointment) error {
	if _, ok := h.patients[a.PatientID]; !ok {
		return outcome.Invalid(outcome.ErrNotFound, "appointment %s references unknown patient %s", a.ID, a.PatientID)
	}
	if _, ok := h.doctors[a.DoctorID]; !ok {
		return outcome.Invalid(outcome.ErrNotFound, "appointment %s references unknown doctor %s", a.ID, a.DoctorID)
	}
	return nil
}
