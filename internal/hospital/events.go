package hospital

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventAppointmentCreated     = "APPOINTMENT_CREATED"
	EventAppointmentStatus      = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentUpdated     = "APPOINTMENT_UPDATED"
	EventSlotAdded              = "SLOT_ADDED"
	EventSlotRemoved            = "SLOT_REMOVED"
	EventSlotBooked             = "SLOT_BOOKED"
	EventSlotCancelled          = "SLOT_CANCELLED"
)

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	DoctorID      *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// EventRecorder receives an audit entry for every appointment and slot
// mutation. Failures are logged, never surfaced to the caller.
type EventRecorder interface {
	InsertEvent(ctx context.Context, ev EventLog) error
}

type nopRecorder struct{}

func (nopRecorder) InsertEvent(context.Context, EventLog) error { return nil }

func (h *Hospital) logEvent(ctx context.Context, eventType string, appointmentID, doctorID *uuid.UUID, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Warn("failed to marshal event payload")
		data = nil
	}

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		DoctorID:      doctorID,
		Payload:       data,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.events.InsertEvent(ctx, ev); err != nil {
		h.log.WithError(err).WithField("event", eventType).Warn("failed to insert event log")
	}
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}
