package handler

import (
	"encoding/json"
	"net/http"

	"member-tracker-go/internal/domain/apperror"
	"member-tracker-go/internal/domain/validate"
)

type errorResponse struct {
	Error  string               `json:"error"`
	Code   string               `json:"code"`
	Fields validate.FieldErrors `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind apperror.Kind, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: kind.String()})
}

// statusFor maps a kind to its status. Conflict has no status of its own and
// is told apart by the code field of the body.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.InvalidInput:
		return http.StatusBadRequest
	case apperror.Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError renders err by its kind. Field-level validation messages
// are included when present.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	body := errorResponse{Error: apperror.PublicMessage(err), Code: kind.String()}
	if kind == apperror.InvalidInput {
		if fields, ok := validate.Fields(err); ok {
			body.Fields = fields
			body.Error = apperror.InvalidInput.Message()
		}
	}
	writeJSON(w, statusFor(kind), body)
}

// fail logs err with op and renders it. Client-caused kinds are business
// errors; everything else is internal.
func (h *Handlers) fail(w http.ResponseWriter, op string, err error, args ...any) {
	if apperror.KindOf(err) == apperror.UpstreamFailure {
		h.log.InternalError(op, err, args...)
	} else {
		h.log.BusinessError(op, err, args...)
	}
	writeDomainError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func invalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, apperror.InvalidInput, "invalid json body")
}
