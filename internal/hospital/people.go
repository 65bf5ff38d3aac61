package hospital

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type Patient struct {
	ID               uuid.UUID
	Name             string
	Age              int
	Gender           string
	Phone            string
	Address          string
	EmergencyContact string
	BloodGroup       string
	MedicalHistory   string
	AdmittedAt       time.Time
	Active           bool
	Appointments     []uuid.UUID
	Prescriptions    []Prescription
}

type PatientInput struct {
	Name             string `json:"name" validate:"required,max=120"`
	Age              int    `json:"age" validate:"gte=0,lte=150"`
	Gender           string `json:"gender" validate:"required,max=30"`
	Phone            string `json:"phone" validate:"required,max=30"`
	Address          string `json:"address" validate:"max=250"`
	EmergencyContact string `json:"emergency_contact" validate:"max=120"`
	BloodGroup       string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MedicalHistory   string `json:"medical_history"`
}

// Prescription is an entry of a patient's medication history.
type Prescription struct {
	ID       uuid.UUID `json:"id"`
	IssuedAt time.Time `json:"issued_at"`
	Doctor   string    `json:"doctor"`
	Medicine string    `json:"medicine" validate:"required"`
	Dosage   string    `json:"dosage" validate:"required"`
	Duration string    `json:"duration" validate:"required"`
	Notes    string    `json:"notes"`
}

func (p *Patient) clone() *Patient {
	c := *p
	c.Appointments = slices.Clone(p.Appointments)
	c.Prescriptions = slices.Clone(p.Prescriptions)
	return &c
}

func (p *Patient) addAppointment(id uuid.UUID) {
	if !slices.Contains(p.Appointments, id) {
		p.Appointments = append(p.Appointments, id)
	}
}

func (p *Patient) String() string {
	return fmt.Sprintf("Patient(%s) - %s (%d, %s) - %s", p.ID, p.Name, p.Age, p.Gender, activeLabel(p.Active))
}

type Doctor struct {
	ID              uuid.UUID
	Name            string
	Specialization  string
	Phone           string
	Email           string
	ExperienceYears int
	Qualification   string
	Department      string
	JoinedAt        time.Time
	Active          bool
	ConsultationFee decimal.Decimal
	Patients        []uuid.UUID
	Appointments    []uuid.UUID
	Schedule        *schedule.Registry
}

type DoctorInput struct {
	Name            string `json:"name" validate:"required,max=120"`
	Specialization  string `json:"specialization" validate:"required,max=80"`
	Phone           string `json:"phone" validate:"required,max=30"`
	Email           string `json:"email" validate:"omitempty,email"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0,lte=80"`
	Qualification   string `json:"qualification" validate:"max=120"`
	Department      string `json:"department" validate:"max=80"`
}

func (d *Doctor) clone() *Doctor {
	c := *d
	c.Patients = slices.Clone(d.Patients)
	c.Appointments = slices.Clone(d.Appointments)
	c.Schedule = d.Schedule.Clone()
	return &c
}

func (d *Doctor) addPatient(id uuid.UUID) {
	if !slices.Contains(d.Patients, id) {
		d.Patients = append(d.Patients, id)
	}
}

func (d *Doctor) addAppointment(id uuid.UUID) {
	if !slices.Contains(d.Appointments, id) {
		d.Appointments = append(d.Appointments, id)
	}
}

func (d *Doctor) String() string {
	return fmt.Sprintf("Dr. %s (%s) - %s", d.Name, d.Specialization, activeLabel(d.Active))
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

var validate = validator.New()

// validateInput runs struct-tag validation and folds the failures into one
// invalid-input error.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return outcome.Invalid(outcome.ErrInvalidInput, "%v", err)
	}
	msgs := make([]string, 0, len(ves))
	for _, e := range ves {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "max":
			msgs = append(msgs, field+" must be at most "+e.Param()+" characters")
		case "gte":
			msgs = append(msgs, field+" must be greater than or equal to "+e.Param())
		case "lte":
			msgs = append(msgs, field+" must be less than or equal to "+e.Param())
		case "oneof":
			msgs = append(msgs, field+" must be one of "+e.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	sort.Strings(msgs)
	return outcome.Invalid(outcome.ErrInvalidInput, "%s", strings.Join(msgs, "; "))
}
