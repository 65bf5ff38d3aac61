package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/lock"
	"github.com/hackgods/clinic-scheduling/internal/outcome"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func writeResult(w http.ResponseWriter, res outcome.Result) {
	writeJSON(w, http.StatusOK, ResultResponse{OK: res.Ok(), Message: res.Message})
}

// errorCode names a sentinel for clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, outcome.ErrNotFound):
		return "not_found"
	case errors.Is(err, outcome.ErrConflict):
		return "time_conflict"
	case errors.Is(err, outcome.ErrCapacity):
		return "slot_full"
	case errors.Is(err, outcome.ErrDuplicate):
		return "already_booked"
	case errors.Is(err, outcome.ErrState):
		return "invalid_state"
	case errors.Is(err, outcome.ErrInactive):
		return "inactive"
	default:
		return "invalid_input"
	}
}

// writeOutcomeError maps a registry error onto a status. Rejections are
// 404 or 409; caller errors are 400 for bad input and 422 for references
// that do not resolve.
func writeOutcomeError(w http.ResponseWriter, err error) {
	if errors.Is(err, lock.ErrLockNotAcquired) {
		writeError(w, http.StatusConflict, "resource_busy", "resource is being modified, please retry shortly")
		return
	}

	var oe *outcome.Error
	if !errors.As(err, &oe) {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	code := errorCode(err)
	switch oe.Kind {
	case outcome.KindRejected:
		if errors.Is(err, outcome.ErrNotFound) {
			writeError(w, http.StatusNotFound, code, err.Error())
			return
		}
		writeError(w, http.StatusConflict, code, err.Error())
	default:
		if errors.Is(err, outcome.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, code, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, code, err.Error())
	}
}

// decodeJSON reads the body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", describe(err))
		return false
	}
	return true
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// pathID parses the named URL parameter as a uuid, answering 400 if it is not.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
