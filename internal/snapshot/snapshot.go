// Package snapshot serialises the whole registry, one collection per file
// or row, and rebuilds it with the ids taken from the collection keys.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

const (
	CollectionPatients     = "patients"
	CollectionDoctors      = "doctors"
	CollectionAppointments = "appointments"
)

type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}

type Snapshot struct {
	Patients     map[string]PatientRecord     `json:"patients"`
	Doctors      map[string]DoctorRecord      `json:"doctors"`
	Appointments map[string]AppointmentRecord `json:"appointments"`
}

func Empty() Snapshot {
	return Snapshot{
		Patients:     map[string]PatientRecord{},
		Doctors:      map[string]DoctorRecord{},
		Appointments: map[string]AppointmentRecord{},
	}
}

type PatientRecord struct {
	Name             string                  `json:"name"`
	Age              int                     `json:"age"`
	Gender           string                  `json:"gender"`
	Phone            string                  `json:"phone"`
	Address          string                  `json:"address"`
	EmergencyContact string                  `json:"emergency_contact"`
	BloodGroup       string                  `json:"blood_group"`
	MedicalHistory   string                  `json:"medical_history"`
	AdmittedAt       time.Time               `json:"admitted_at"`
	Active           bool                    `json:"is_active"`
	Appointments     []uuid.UUID             `json:"appointments"`
	Prescriptions    []hospital.Prescription `json:"prescriptions"`
}

type SlotRecord struct {
	ID        uuid.UUID   `json:"id"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Capacity  int         `json:"max_patients"`
	Occupants []uuid.UUID `json:"booked_patients"`
}

type DoctorRecord struct {
	Name            string                  `json:"name"`
	Specialization  string                  `json:"specialization"`
	Phone           string                  `json:"phone"`
	Email           string                  `json:"email"`
	ExperienceYears int                     `json:"experience_years"`
	Qualification   string                  `json:"qualification"`
	Department      string                  `json:"department"`
	JoinedAt        time.Time               `json:"join_date"`
	Active          bool                    `json:"is_active"`
	ConsultationFee string                  `json:"consultation_fee"`
	Patients        []uuid.UUID             `json:"patients"`
	Appointments    []uuid.UUID             `json:"appointments"`
	Schedule        map[string][]SlotRecord `json:"schedule"`
}

type AppointmentRecord struct {
	PatientID    uuid.UUID `json:"patient_id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	Date         string    `json:"date"`
	TimeSlot     string    `json:"time_slot"`
	Type         string    `json:"appointment_type"`
	Notes        string    `json:"notes"`
	Status       string    `json:"status"`
	Diagnosis    *string   `json:"diagnosis"`
	Prescription *string   `json:"prescription"`
	FollowUpDate *string   `json:"follow_up_date"`
	Cost         string    `json:"cost"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return append([]T{}, s...)
}

// Export copies every record of h into a snapshot.
func Export(h *hospital.Hospital) Snapshot {
	snap := Empty()

	for _, p := range h.Patients() {
		snap.Patients[p.ID.String()] = PatientRecord{
			Name:             p.Name,
			Age:              p.Age,
			Gender:           p.Gender,
			Phone:            p.Phone,
			Address:          p.Address,
			EmergencyContact: p.EmergencyContact,
			BloodGroup:       p.BloodGroup,
			MedicalHistory:   p.MedicalHistory,
			AdmittedAt:       p.AdmittedAt,
			Active:           p.Active,
			Appointments:     nonNil(p.Appointments),
			Prescriptions:    nonNil(p.Prescriptions),
		}
	}

	for _, d := range h.Doctors() {
		sched := make(map[string][]SlotRecord)
		for _, date := range d.Schedule.Dates() {
			for _, s := range d.Schedule.Slots(date) {
				sched[date] = append(sched[date], SlotRecord{
					ID:        s.ID,
					StartTime: s.Window.Start.String(),
					EndTime:   s.Window.End.String(),
					Capacity:  s.Capacity,
					Occupants: nonNil(s.Occupants),
				})
			}
		}
		snap.Doctors[d.ID.String()] = DoctorRecord{
			Name:            d.Name,
			Specialization:  d.Specialization,
			Phone:           d.Phone,
			Email:           d.Email,
			ExperienceYears: d.ExperienceYears,
			Qualification:   d.Qualification,
			Department:      d.Department,
			JoinedAt:        d.JoinedAt,
			Active:          d.Active,
			ConsultationFee: d.ConsultationFee.String(),
			Patients:        nonNil(d.Patients),
			Appointments:    nonNil(d.Appointments),
			Schedule:        sched,
		}
	}

	for _, a := range h.Appointments() {
		snap.Appointments[a.ID.String()] = AppointmentRecord{
			PatientID:    a.PatientID,
			DoctorID:     a.DoctorID,
			Date:         a.Date,
			TimeSlot:     a.Window.String(),
			Type:         a.Type,
			Notes:        a.Notes,
			Status:       string(a.Status),
			Diagnosis:    a.Diagnosis,
			Prescription: a.Prescription,
			FollowUpDate: a.FollowUpDate,
			Cost:         a.Cost.String(),
			CreatedAt:    a.CreatedAt,
			UpdatedAt:    a.UpdatedAt,
		}
	}

	return snap
}

// Import rebuilds a hospital from snap. Patients and doctors are loaded
// before the appointments that reference them.
func Import(snap Snapshot, info hospital.Info, opts hospital.Options) (*hospital.Hospital, error) {
	h := hospital.New(info, opts)

	for key, r := range snap.Patients {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("patient key %q: %w", key, err)
		}
		err = h.RestorePatient(hospital.Patient{
			ID:               id,
			Name:             r.Name,
			Age:              r.Age,
			Gender:           r.Gender,
			Phone:            r.Phone,
			Address:          r.Address,
			EmergencyContact: r.EmergencyContact,
			BloodGroup:       r.BloodGroup,
			MedicalHistory:   r.MedicalHistory,
			AdmittedAt:       r.AdmittedAt,
			Active:           r.Active,
			Appointments:     r.Appointments,
			Prescriptions:    r.Prescriptions,
		})
		if err != nil {
			return nil, fmt.Errorf("restore patient %s: %w", key, err)
		}
	}

	for key, r := range snap.Doctors {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("doctor key %q: %w", key, err)
		}
		fee, err := parseMoney(r.ConsultationFee)
		if err != nil {
			return nil, fmt.Errorf("doctor %s consultation fee: %w", key, err)
		}
		var slots []hospital.SlotRecord
		for date, day := range r.Schedule {
			for _, s := range day {
				w, err := schedule.NewWindow(s.StartTime, s.EndTime)
				if err != nil {
					return nil, fmt.Errorf("doctor %s slot %s: %w", key, s.ID, err)
				}
				slots = append(slots, hospital.SlotRecord{
					Date: date,
					Slot: schedule.Slot{ID: s.ID, Window: w, Capacity: s.Capacity, Occupants: s.Occupants},
				})
			}
		}
		err = h.RestoreDoctor(hospital.Doctor{
			ID:              id,
			Name:            r.Name,
			Specialization:  r.Specialization,
			Phone:           r.Phone,
			Email:           r.Email,
			ExperienceYears: r.ExperienceYears,
			Qualification:   r.Qualification,
			Department:      r.Department,
			JoinedAt:        r.JoinedAt,
			Active:          r.Active,
			ConsultationFee: fee,
			Patients:        r.Patients,
			Appointments:    r.Appointments,
		}, slots)
		if err != nil {
			return nil, fmt.Errorf("restore doctor %s: %w", key, err)
		}
	}

	for key, r := range snap.Appointments {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("appointment key %q: %w", key, err)
		}
		w, err := schedule.ParseWindow(r.TimeSlot)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", key, err)
		}
		cost, err := parseMoney(r.Cost)
		if err != nil {
			return nil, fmt.Errorf("appointment %s cost: %w", key, err)
		}
		err = h.RestoreAppointment(appointment.Appointment{
			ID:           id,
			PatientID:    r.PatientID,
			DoctorID:     r.DoctorID,
			Date:         r.Date,
			Window:       w,
			Type:         r.Type,
			Notes:        r.Notes,
			Status:       appointment.Status(r.Status),
			Diagnosis:    r.Diagnosis,
			Prescription: r.Prescription,
			FollowUpDate: r.FollowUpDate,
			Cost:         cost,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("restore appointment %s: %w", key, err)
		}
	}

	return h, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
