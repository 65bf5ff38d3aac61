package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type UpdateHistoryRequest struct {
	Condition string `json:"condition" validate:"required"`
}

type SetFeeRequest struct {
	Fee string `json:"fee" validate:"required,number"`
}

type CreateSlotRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Capacity  int    `json:"max_patients" validate:"omitempty,gte=1"`
}

type SlotPatientRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
}

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot  string `json:"time_slot" validate:"required"`
	Type      string `json:"appointment_type"`
	Notes     string `json:"notes"`
}

type RescheduleRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot string `json:"time_slot" validate:"required"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

type TextRequest struct {
	Value string `json:"value" validate:"required"`
}

type CostRequest struct {
	Cost string `json:"cost" validate:"required,number"`
}

type PatientResponse struct {
	ID               uuid.UUID               `json:"id"`
	Name             string                  `json:"name"`
	Age              int                     `json:"age"`
	Gender           string                  `json:"gender"`
	Phone            string                  `json:"phone"`
	Address          string                  `json:"address,omitempty"`
	EmergencyContact string                  `json:"emergency_contact,omitempty"`
	BloodGroup       string                  `json:"blood_group,omitempty"`
	MedicalHistory   string                  `json:"medical_history,omitempty"`
	AdmittedAt       time.Time               `json:"admitted_at"`
	Active           bool                    `json:"is_active"`
	Appointments     []uuid.UUID             `json:"appointments"`
	Prescriptions    []hospital.Prescription `json:"prescriptions"`
}

func newPatientResponse(p *hospital.Patient) PatientResponse {
	return PatientResponse{
		ID:               p.ID,
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
		Appointments:     p.Appointments,
		Prescriptions:    p.Prescriptions,
	}
}

type DoctorResponse struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Specialization  string      `json:"specialization"`
	Phone           string      `json:"phone"`
	Email           string      `json:"email,omitempty"`
	ExperienceYears int         `json:"experience_years"`
	Qualification   string      `json:"qualification,omitempty"`
	Department      string      `json:"department,omitempty"`
	JoinedAt        time.Time   `json:"join_date"`
	Active          bool        `json:"is_active"`
	ConsultationFee string      `json:"consultation_fee"`
	Patients        []uuid.UUID `json:"patients"`
	Appointments    []uuid.UUID `json:"appointments"`
	ScheduleDates   []string    `json:"schedule_dates"`
}

func newDoctorResponse(d *hospital.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:              d.ID,
		Name:            d.Name,
		Specialization:  d.Specialization,
		Phone:           d.Phone,
		Email:           d.Email,
		ExperienceYears: d.ExperienceYears,
		Qualification:   d.Qualification,
		Department:      d.Department,
		JoinedAt:        d.JoinedAt,
		Active:          d.Active,
		ConsultationFee: d.ConsultationFee.StringFixed(2),
		Patients:        d.Patients,
		Appointments:    d.Appointments,
		ScheduleDates:   d.Schedule.Dates(),
	}
}

type SlotResponse struct {
	ID        uuid.UUID   `json:"id"`
	Date      string      `json:"date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Capacity  int         `json:"max_patients"`
	Occupants []uuid.UUID `json:"booked_patients"`
	Remaining int         `json:"remaining"`
}

func newSlotResponse(date string, s schedule.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		Date:      date,
		StartTime: s.Window.Start.String(),
		EndTime:   s.Window.End.String(),
		Capacity:  s.Capacity,
		Occupants: s.Occupants,
		Remaining: s.Remaining(),
	}
}

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	Date         string    `json:"date"`
	TimeSlot     string    `json:"time_slot"`
	Type         string    `json:"appointment_type"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	Diagnosis    *string   `json:"diagnosis,omitempty"`
	Prescription *string   `json:"prescription,omitempty"`
	FollowUpDate *string   `json:"follow_up_date,omitempty"`
	Cost         string    `json:"cost"`
	Urgent       bool      `json:"urgent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
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
		Cost:         a.Cost.StringFixed(2),
		Urgent:       a.IsUrgent(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func newAppointmentList(in []*appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(in))
	for _, a := range in {
		out = append(out, newAppointmentResponse(a))
	}
	return out
}

// ResultResponse carries the verdict of a soft operation.
type ResultResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
