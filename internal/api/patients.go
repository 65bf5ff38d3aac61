package api

import (
	"net/http"

	"github.com/hackgods/clinic-scheduling/internal/hospital"
)

type PrescriptionRequest struct {
	Doctor   string `json:"doctor"`
	Medicine string `json:"medicine" validate:"required"`
	Dosage   string `json:"dosage" validate:"required"`
	Duration string `json:"duration" validate:"required"`
	Notes    string `json:"notes"`
}

func createPatientHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hospital.PatientInput
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := h.AddPatient(r.Context(), req)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newPatientResponse(p))
	}
}

func listPatientsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients := h.SearchPatients(r.URL.Query().Get("q"))
		out := make([]PatientResponse, 0, len(patients))
		for _, p := range patients {
			out = append(out, newPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPatientHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		p, err := h.Patient(id)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newPatientResponse(p))
	}
}

func patientAppointmentsHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if _, err := h.Patient(id); err != nil {
			writeOutcomeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAppointmentList(h.AppointmentsByPatient(id)))
	}
}

func setPatientActiveHandler(h *hospital.Hospital, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		set := h.DeactivatePatient
		if active {
			set = h.ActivatePatient
		}
		if err := set(r.Context(), id); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func updateHistoryHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req UpdateHistoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := h.UpdateMedicalHistory(r.Context(), id, req.Condition); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func addPrescriptionHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req PrescriptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		rx, err := h.AddPrescription(r.Context(), id, hospital.Prescription{
			Doctor:   req.Doctor,
			Medicine: req.Medicine,
			Dosage:   req.Dosage,
			Duration: req.Duration,
			Notes:    req.Notes,
		})
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, rx)
	}
}

func removePatientHandler(h *hospital.Hospital) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		if err := h.RemovePatient(r.Context(), id); err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
