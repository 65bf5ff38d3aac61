package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func createDoctorHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hospital.DoctorInput
		if !decodeJSON(w, r, &req) {
			return
		}

		d, err := h.AddDoctor(r.Context(), req)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newDoctorResponse(d))
	}
}

func listDoctorsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors := h.SearchDoctors(r.URL.Query().Get("q"))
		out := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			out = append(out, newDoctorResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDoctorHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		d, err := h.Doctor(id)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newDoctorResponse(d))
	}
}

func doctorAppointmentsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if _, err := h.Doctor(id); err != nil {
			writeOutcomeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAppointmentList(h.AppointmentsByDoctor(id)))
	}
}

func setDoctorActiveHandler(h *hospital.Hospital, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		set := h.DeactivateDoctor
		if active {
			set = h.ActivateDoctor
		}
		if err := set(r.Context(), id); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func setFeeHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req SetFeeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		fee, err := decimal.NewFromString(req.Fee)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "fee must be a decimal number")
			return
		}

		res, err := h.SetConsultationFee(r.Context(), id, fee)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeResult(w, res)
	}
}

func removeDoctorHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := h.RemoveDoctor(r.Context(), id); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func addSlotHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req CreateSlotRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		win, err := schedule.NewWindow(req.StartTime, req.EndTime)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}
		capacity := req.Capacity
		if capacity == 0 {
			capacity = 1
		}

		slotID, err := h.AddSlot(r.Context(), id, req.Date, win, capacity)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreatedResponse{ID: slotID})
	}
}

// scheduleHandler lists every slot of the doctor on ?date=, full ones
// included.
func scheduleHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		date := r.URL.Query().Get("date")
		if err := schedule.ValidateDate(date); err != nil {
			writeOutcomeError(w, err)
			return
		}

		d, err := h.Doctor(id)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		slots := d.Schedule.Slots(date)
		out := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, newSlotResponse(date, s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func availableSlotsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		avail, err := h.AvailableSlots(id, r.URL.Query().Get("date"))
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, avail)
	}
}

func removeSlotHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		slotID, ok := pathID(w, r, "slotID")
		if !ok {
			return
		}

		if err := h.RemoveSlot(r.Context(), id, chi.URLParam(r, "date"), slotID); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// slotPatientHandler books or releases a unit of a slot for a patient.
func slotPatientHandler(h *hospital.Hospital, book bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		slotID, ok := pathID(w, r, "slotID")
		if !ok {
			return
		}
		var req SlotPatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		op := h.CancelSlot
		if book {
			op = h.BookSlot
		}
		if err := op(r.Context(), id, chi.URLParam(r, "date"), slotID, patientID); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
