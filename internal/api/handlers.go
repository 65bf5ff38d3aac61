package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func createAppointmentHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		win, err := schedule.ParseWindow(req.TimeSlot)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		appt, err := h.CreateAppointment(r.Context(), appointment.Details{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      req.Date,
			Window:    win,
			Type:      req.Type,
			Notes:     req.Notes,
		})
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newAppointmentResponse(appt))
	}
}

func getAppointmentHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		appt, err := h.Appointment(id)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

// listAppointmentsHandler accepts date, status and kind (urgent or
// follow_up) filters; they combine.
func listAppointmentsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var list []*appointment.Appointment
		switch q.Get("kind") {
		case "":
			list = h.Appointments()
		case "urgent":
			list = h.UrgentAppointments()
		case "follow_up":
			list = h.FollowUpAppointments()
		default:
			writeError(w, http.StatusBadRequest, "invalid_kind", "kind must be urgent or follow_up")
			return
		}

		if date := q.Get("date"); date != "" {
			if err := schedule.ValidateDate(date); err != nil {
				writeOutcomeError(w, err)
				return
			}
			list = slices.DeleteFunc(list, func(a *appointment.Appointment) bool { return a.Date != date })
		}
		if raw := q.Get("status"); raw != "" {
			status, err := appointment.ParseStatus(raw)
			if err != nil {
				writeOutcomeError(w, err)
				return
			}
			list = slices.DeleteFunc(list, func(a *appointment.Appointment) bool { return a.Status != status })
		}

		writeJSON(w, http.StatusOK, newAppointmentList(list))
	}
}

// transitionHandler runs a status change that takes no body.
func transitionHandler(op func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		appt, err := op(r.Context(), id)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

// noteTransitionHandler runs a status change carrying an optional note.
func noteTransitionHandler(op func(ctx context.Context, id uuid.UUID, note string) (*appointment.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req NoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := op(r.Context(), id, req.Note)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

func updateStatusHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req StatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		status, err := appointment.ParseStatus(req.Status)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		appt, err := h.UpdateAppointmentStatus(r.Context(), id, status, req.Note)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

func rescheduleHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req RescheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		win, err := schedule.ParseWindow(req.TimeSlot)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		appt, err := h.RescheduleAppointment(r.Context(), id, req.Date, win)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

// textUpdateHandler serves the soft text updates: diagnosis, prescription
// and follow-up date.
func textUpdateHandler(op func(ctx context.Context, id uuid.UUID, value string) (outcome.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req TextRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := op(r.Context(), id, req.Value)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeResult(w, res)
	}
}

func setCostHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req CostRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		cost, err := decimal.NewFromString(req.Cost)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "cost must be a decimal number")
			return
		}

		res, err := h.SetAppointmentCost(r.Context(), id, cost)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeResult(w, res)
	}
}

func statisticsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := r.URL.Query().Get("today")
		if today == "" {
			today = time.Now().UTC().Format(schedule.DateLayout)
		} else if err := schedule.ValidateDate(today); err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, h.Statistics(today))
	}
}

// EventSource reads back the audit trail.
type EventSource interface {
	RecentEvents(ctx context.Context, limit int) ([]hospital.EventLog, error)
}

type EventResponse struct {
	ID            int64           `json:"id"`
	EventType     string          `json:"event_type"`
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	DoctorID      *uuid.UUID      `json:"doctor_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func listEventsHandler(src EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
				return
			}
			limit = n
		}

		events, err := src.RecentEvents(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]EventResponse, 0, len(events))
		for _, ev := range events {
			out = append(out, EventResponse{
				ID:            ev.ID,
				EventType:     ev.EventType,
				AppointmentID: ev.AppointmentID,
				DoctorID:      ev.DoctorID,
				Payload:       ev.Payload,
				CreatedAt:     ev.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
