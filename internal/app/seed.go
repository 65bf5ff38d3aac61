package app

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type SeedOptions struct {
	Seed                  uint64
	Doctors               int
	Patients              int
	Days                  int
	StartDate             time.Time
	AppointmentsPerDoctor int
}

type SeedSummary struct {
	Doctors      int
	Patients     int
	Slots        int
	Appointments int
}

var (
	bloodGroups      = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	appointmentTypes = []string{"Regular", "Regular", "Regular", "follow-up", "review", "urgent", "emergency"}
	conditions       = []string{"hypertension", "asthma", "type 2 diabetes", "migraine", "allergic rhinitis"}
)

// Populate fills h with generated doctors, patients, morning slots for each
// day and booked appointments.
func Populate(ctx context.Context, h *hospital.Hospital, opts SeedOptions) (SeedSummary, error) {
	f := gofakeit.New(opts.Seed)
	depts := h.Info().Departments
	var sum SeedSummary

	doctors := make([]uuid.UUID, 0, opts.Doctors)
	for i := 0; i < opts.Doctors; i++ {
		dept := depts[i%len(depts)]
		d, err := h.AddDoctor(ctx, hospital.DoctorInput{
			Name:            "Dr. " + f.Name(),
			Specialization:  dept,
			Phone:           f.Phone(),
			Email:           f.Email(),
			ExperienceYears: f.Number(1, 35),
			Qualification:   f.RandomString([]string{"MBBS", "MD", "MBBS, MD", "MBBS, MS"}),
			Department:      dept,
		})
		if err != nil {
			return sum, fmt.Errorf("add doctor: %w", err)
		}
		if _, err := h.SetConsultationFee(ctx, d.ID, decimal.NewFromInt(int64(f.Number(50, 300)))); err != nil {
			return sum, fmt.Errorf("set fee: %w", err)
		}
		doctors = append(doctors, d.ID)
	}
	sum.Doctors = len(doctors)

	patients := make([]uuid.UUID, 0, opts.Patients)
	for i := 0; i < opts.Patients; i++ {
		p, err := h.AddPatient(ctx, hospital.PatientInput{
			Name:             f.Name(),
			Age:              f.Number(1, 95),
			Gender:           f.Gender(),
			Phone:            f.Phone(),
			Address:          f.Address().Address,
			EmergencyContact: f.Phone(),
			BloodGroup:       f.RandomString(bloodGroups),
		})
		if err != nil {
			return sum, fmt.Errorf("add patient: %w", err)
		}
		if f.Bool() {
			if err := h.UpdateMedicalHistory(ctx, p.ID, f.RandomString(conditions)); err != nil {
				return sum, err
			}
		}
		patients = append(patients, p.ID)
	}
	sum.Patients = len(patients)

	for _, doctorID := range doctors {
		for day := 0; day < opts.Days; day++ {
			date := opts.StartDate.AddDate(0, 0, day).Format(schedule.DateLayout)
			for start := 9 * 60; start < 12*60; start += 30 {
				w := schedule.Window{Start: schedule.Clock(start), End: schedule.Clock(start + 30)}
				if _, err := h.AddSlot(ctx, doctorID, date, w, f.Number(1, 3)); err != nil {
					return sum, fmt.Errorf("add slot: %w", err)
				}
				sum.Slots++
			}
		}
	}

	if len(patients) == 0 || opts.Days == 0 {
		return sum, nil
	}
	for _, doctorID := range doctors {
		for i := 0; i < opts.AppointmentsPerDoctor; i++ {
			date := opts.StartDate.AddDate(0, 0, f.Number(0, opts.Days-1)).Format(schedule.DateLayout)
			avail, err := h.AvailableSlots(doctorID, date)
			if err != nil {
				return sum, err
			}
			if len(avail) == 0 {
				continue
			}
			slot := avail[f.Number(0, len(avail)-1)]
			patientID := patients[f.Number(0, len(patients)-1)]

			if err := h.BookSlot(ctx, doctorID, date, slot.SlotID, patientID); err != nil {
				// same patient drawn twice for one slot
				continue
			}
			if _, err := h.CreateAppointment(ctx, appointment.Details{
				PatientID: patientID,
				DoctorID:  doctorID,
				Date:      date,
				Window:    slot.Window,
				Type:      f.RandomString(appointmentTypes),
			}); err != nil {
				return sum, fmt.Errorf("create appointment: %w", err)
			}
			sum.Appointments++
		}
	}

	return sum, nil
}
