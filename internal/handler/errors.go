package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// errorDetail is the machine-readable error payload.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the envelope for every non-2xx JSON body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON serializes v with the given status code.
// Encoding failures are swallowed: the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeNotFound writes a 404. The caller supplies the human-readable message
// (e.g. "trip not found") because the handler is the layer that knows what
// was being looked up.
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, errorResponse{errorDetail{"not_found", message}})
}

// writeRequestError writes a 422 for a request rejected before reaching the
// service layer (missing or malformed body, bad path parameter).
func writeRequestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", message}})
}

// writeDomainError maps a wrapped domain sentinel to its HTTP status/code
// pair and writes the error envelope. Anything unrecognized (store failures,
// programming errors) becomes an opaque 500 — the details stay in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{errorDetail{"forbidden", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrNotFound):
		writeNotFound(w, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"conflict", unwrapMessage(err)}})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{"internal", "internal server error"}})
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error: call-site prefixes ("service.X.Y: ", "repo.X.Y: ") are stripped from
// the front, the sentinel text from either end.
// e.g. "service.BookingService.Decide: repo.BookingRepo.Transition: no seats
// left: conflict" becomes "no seats left".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	for {
		i := strings.Index(msg, ": ")
		if i < 0 {
			break
		}
		head := msg[:i]
		if !strings.Contains(head, " ") && (strings.HasPrefix(head, "service.") || strings.HasPrefix(head, "repo.")) {
			msg = msg[i+2:]
			continue
		}
		break
	}

	for _, sentinel := range []string{
		domain.ErrValidation.Error(),
		domain.ErrUnauthorized.Error(),
		domain.ErrNotFound.Error(),
		domain.ErrConflict.Error(),
	} {
		msg = strings.TrimSuffix(msg, ": "+sentinel)
		msg = strings.TrimPrefix(msg, sentinel+": ")
	}
	return msg
}
