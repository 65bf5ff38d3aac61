// Package hospital is the coordinating registry: it owns patients, doctors
// and appointments, checks references between them, and routes every
// mutation through a per-entity lock.
//
// Slot occupancy and appointment records are tracked independently. Booking
// a slot never creates an appointment and creating, cancelling or
// rescheduling an appointment never touches a slot.
package hospital

import (
	"context"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/lock"
	"github.com/hackgods/clinic-scheduling/internal/outcome"
)

var DefaultDepartments = []string{
	"Cardiology", "Neurology", "Orthopedics", "Pediatrics",
	"General Medicine", "Surgery", "Emergency", "Radiology",
}

type Info struct {
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Established time.Time `json:"established"`
	Departments []string  `json:"departments"`
}

type Options struct {
	Locker lock.Locker
	Events EventRecorder
	Logger *logrus.Logger
}

type Hospital struct {
	info   Info
	locker lock.Locker
	events EventRecorder
	log    *logrus.Logger

	mu           sync.RWMutex
	patients     map[uuid.UUID]*Patient
	doctors      map[uuid.UUID]*Doctor
	appointments map[uuid.UUID]*appointment.Appointment
}

func New(info Info, opts Options) *Hospital {
	if info.Established.IsZero() {
		info.Established = time.Now().UTC()
	}
	if len(info.Departments) == 0 {
		info.Departments = append([]string(nil), DefaultDepartments...)
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewLocalLocker()
	}
	if opts.Events == nil {
		opts.Events = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}

	return &Hospital{
		info:         info,
		locker:       opts.Locker,
		events:       opts.Events,
		log:          opts.Logger,
		patients:     make(map[uuid.UUID]*Patient),
		doctors:      make(map[uuid.UUID]*Doctor),
		appointments: make(map[uuid.UUID]*appointment.Appointment),
	}
}

func (h *Hospital) Info() Info {
	info := h.info
	info.Departments = append([]string(nil), h.info.Departments...)
	return info
}

func patientKey(id uuid.UUID) string     { return "patient:" + id.String() }
func doctorKey(id uuid.UUID) string      { return "doctor:" + id.String() }
func appointmentKey(id uuid.UUID) string { return "appointment:" + id.String() }

// mutate runs fn under the entity lock and the registry write lock.
func (h *Hospital) mutate(ctx context.Context, key string, fn func() error) error {
	return h.locker.WithLock(ctx, key, func(context.Context) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		return fn()
	})
}

func (h *Hospital) AddPatient(ctx context.Context, in PatientInput) (*Patient, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := &Patient{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(in.Name),
		Age:              in.Age,
		Gender:           in.Gender,
		Phone:            in.Phone,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
		BloodGroup:       in.BloodGroup,
		MedicalHistory:   in.MedicalHistory,
		AdmittedAt:       time.Now().UTC(),
		Active:           true,
		Appointments:     []uuid.UUID{},
		Prescriptions:    []Prescription{},
	}

	err := h.mutate(ctx, patientKey(p.ID), func() error {
		h.patients[p.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.log.WithField("patient_id", p.ID).Info("patient added")
	return p.clone(), nil
}

func (h *Hospital) AddDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d := newDoctor(uuid.New(), in)

	err := h.mutate(ctx, doctorKey(d.ID), func() error {
		h.doctors[d.ID] = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.log.WithField("doctor_id", d.ID).Info("doctor added")
	return d.clone(), nil
}

func (h *Hospital) Patient(id uuid.UUID) (*Patient, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.patients[id]
	if !ok {
		return nil, outcome.Reject(outcome.ErrNotFound, "patient %s not found", id)
	}
	return p.clone(), nil
}

func (h *Hospital) Doctor(id uuid.UUID) (*Doctor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.doctors[id]
	if !ok {
		return nil, outcome.Reject(outcome.ErrNotFound, "doctor %s not found", id)
	}
	return d.clone(), nil
}

// Patients returns every patient ordered by name.
func (h *Hospital) Patients() []*Patient {
	return h.SearchPatients("")
}

func (h *Hospital) Doctors() []*Doctor {
	return h.SearchDoctors("")
}

// SearchPatients matches query against name, id and phone.
func (h *Hospital) SearchPatients(query string) []*Patient {
	q := strings.ToLower(strings.TrimSpace(query))
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Patient, 0)
	for _, p := range h.patients {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(p.ID.String(), q) ||
			strings.Contains(p.Phone, q) {
			out = append(out, p.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// SearchDoctors matches query against name, specialization, id and department.
func (h *Hospital) SearchDoctors(query string) []*Doctor {
	q := strings.ToLower(strings.TrimSpace(query))
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Doctor, 0)
	for _, d := range h.doctors {
		if q == "" ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Specialization), q) ||
			strings.Contains(d.ID.String(), q) ||
			strings.Contains(strings.ToLower(d.Department), q) {
			out = append(out, d.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (h *Hospital) setPatientActive(ctx context.Context, id uuid.UUID, active bool) error {
	return h.mutate(ctx, patientKey(id), func() error {
		p, ok := h.patients[id]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "patient %s not found", id)
		}
		p.Active = active
		return nil
	})
}

func (h *Hospital) DeactivatePatient(ctx context.Context, id uuid.UUID) error {
	return h.setPatientActive(ctx, id, false)
}

func (h *Hospital) ActivatePatient(ctx context.Context, id uuid.UUID) error {
	return h.setPatientActive(ctx, id, true)
}

func (h *Hospital) setDoctorActive(ctx context.Context, id uuid.UUID, active bool) error {
	return h.mutate(ctx, doctorKey(id), func() error {
		d, ok := h.doctors[id]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "doctor %s not found", id)
		}
		d.Active = active
		return nil
	})
}

func (h *Hospital) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	return h.setDoctorActive(ctx, id, false)
}

func (h *Hospital) ActivateDoctor(ctx context.Context, id uuid.UUID) error {
	return h.setDoctorActive(ctx, id, true)
}

// UpdateMedicalHistory appends a dated condition to the patient's history.
func (h *Hospital) UpdateMedicalHistory(ctx context.Context, id uuid.UUID, condition string) error {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return outcome.Invalid(outcome.ErrInvalidInput, "condition is required")
	}
	return h.mutate(ctx, patientKey(id), func() error {
		p, ok := h.patients[id]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "patient %s not found", id)
		}
		entry := time.Now().UTC().Format(time.DateOnly) + ": " + condition
		if p.MedicalHistory == "" {
			p.MedicalHistory = entry
		} else {
			p.MedicalHistory += "\n" + entry
		}
		return nil
	})
}

// AddPrescription records medication on the patient's own history. It is
// separate from the prescription text attached to an appointment.
func (h *Hospital) AddPrescription(ctx context.Context, patientID uuid.UUID, rx Prescription) (Prescription, error) {
	if err := validateInput(rx); err != nil {
		return Prescription{}, err
	}
	rx.ID = uuid.New()
	rx.IssuedAt = time.Now().UTC()

	err := h.mutate(ctx, patientKey(patientID), func() error {
		p, ok := h.patients[patientID]
		if !ok {
			return outcome.Reject(outcome.ErrNotFound, "patient %s not found", patientID)
		}
		p.Prescriptions = append(p.Prescriptions, rx)
		return nil
	})
	if err != nil {
		return Prescription{}, err
	}
	return rx, nil
}

// RemovePatient deletes a patient with no open appointments and drops it
// from every doctor's patient list. Slot occupancy is left as booked.
func (h *Hospital) RemovePatient(ctx context.Context, id uuid.UUID) error {
	err := h.mutate(ctx, patientKey(id), func() error {
		if _, ok := h.patients[id]; !ok {
			return outcome.Reject(outcome.ErrNotFound, "patient %s not found", id)
		}
		if n := h.openAppointments(func(a *appointment.Appointment) bool { return a.PatientID == id }); n > 0 {
			return outcome.Reject(outcome.ErrState, "cannot remove patient with %d active appointments", n)
		}
		delete(h.patients, id)
		for _, d := range h.doctors {
			d.Patients = slices.DeleteFunc(d.Patients, func(p uuid.UUID) bool { return p == id })
		}
		return nil
	})
	if err != nil {
		return err
	}
	h.log.WithField("patient_id", id).Info("patient removed")
	return nil
}

// RemoveDoctor deletes a doctor with no open appointments.
func (h *Hospital) RemoveDoctor(ctx context.Context, id uuid.UUID) error {
	err := h.mutate(ctx, doctorKey(id), func() error {
		if _, ok := h.doctors[id]; !ok {
			return outcome.Reject(outcome.ErrNotFound, "doctor %s not found", id)
		}
		if n := h.openAppointments(func(a *appointment.Appointment) bool { return a.DoctorID == id }); n > 0 {
			return outcome.Reject(outcome.ErrState, "cannot remove doctor with %d active appointments", n)
		}
		delete(h.doctors, id)
		return nil
	})
	if err != nil {
		return err
	}
	h.log.WithField("doctor_id", id).Info("doctor removed")
	return nil
}

// openAppointments counts non-terminal appointments matching fn. Callers
// hold h.mu.
func (h *Hospital) openAppointments(fn func(*appointment.Appointment) bool) int {
	n := 0
	for _, a := range h.appointments {
		if !a.Status.Terminal() && fn(a) {
			n++
		}
	}
	return n
}
