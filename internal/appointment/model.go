package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var Statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, st := range Statuses {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", outcome.Invalid(outcome.ErrInvalidInput, "unknown appointment status %q", s)
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal statuses admit no further lifecycle transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Label is the human form used in summaries.
func (s Status) Label() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusConfirmed:
		return "Confirmed"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusNoShow:
		return "No Show"
	default:
		return string(s)
	}
}

const TypeRegular = "Regular"

type Appointment struct {
	ID           uuid.UUID
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	Date         string
	Window       schedule.Window
	Type         string
	Notes        string
	Status       Status
	Diagnosis    *string
	Prescription *string
	FollowUpDate *string
	Cost         decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Details are the caller-supplied fields of a new appointment.
type Details struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string
	Window    schedule.Window
	Type      string
	Notes     string
}

// New creates a Scheduled appointment with a fresh id.
func New(d Details) (*Appointment, error) {
	if d.PatientID == uuid.Nil || d.DoctorID == uuid.Nil {
		return nil, outcome.Invalid(outcome.ErrInvalidInput, "patient and doctor ids are required")
	}
	if err := schedule.ValidateDate(d.Date); err != nil {
		return nil, err
	}
	if err := d.Window.Validate(); err != nil {
		return nil, err
	}
	typ := strings.TrimSpace(d.Type)
	if typ == "" {
		typ = TypeRegular
	}

	ts := now()
	return &Appointment{
		ID:        uuid.New(),
		PatientID: d.PatientID,
		DoctorID:  d.DoctorID,
		Date:      d.Date,
		Window:    d.Window,
		Type:      typ,
		Notes:     d.Notes,
		Status:    StatusScheduled,
		Cost:      decimal.Zero,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

func (a *Appointment) Clone() *Appointment {
	c := *a
	c.Diagnosis = cloneString(a.Diagnosis)
	c.Prescription = cloneString(a.Prescription)
	c.FollowUpDate = cloneString(a.FollowUpDate)
	return &c
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (a *Appointment) String() string {
	return fmt.Sprintf("Appointment(%s) - %s %s - %s", a.ID, a.Date, a.Window, a.Status.Label())
}

func (a *Appointment) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment ID: %s\n", a.ID)
	fmt.Fprintf(&b, "Patient ID: %s\n", a.PatientID)
	fmt.Fprintf(&b, "Doctor ID: %s\n", a.DoctorID)
	fmt.Fprintf(&b, "Date: %s\n", a.Date)
	fmt.Fprintf(&b, "Time: %s\n", a.Window)
	fmt.Fprintf(&b, "Type: %s\n", a.Type)
	fmt.Fprintf(&b, "Status: %s\n", a.Status.Label())
	fmt.Fprintf(&b, "Cost: $%s\n", a.Cost.StringFixed(2))
	fmt.Fprintf(&b, "Created: %s\n", a.CreatedAt.Format(time.DateTime))
	fmt.Fprintf(&b, "Last Updated: %s", a.UpdatedAt.Format(time.DateTime))
	return b.String()
}

// DetailedSummary adds the medical fields and notes that are set.
func (a *Appointment) DetailedSummary() string {
	var b strings.Builder
	b.WriteString(a.Summary())
	if a.Diagnosis != nil {
		fmt.Fprintf(&b, "\nDiagnosis: %s", *a.Diagnosis)
	}
	if a.Prescription != nil {
		fmt.Fprintf(&b, "\nPrescription: %s", *a.Prescription)
	}
	if a.FollowUpDate != nil {
		fmt.Fprintf(&b, "\nFollow-up Date: %s", *a.FollowUpDate)
	}
	if a.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", a.Notes)
	}
	return b.String()
}

var now = func() time.Time {
	return time.Now().UTC()
}
