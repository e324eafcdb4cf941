package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// retryAfterSeconds is sent with 503 responses for transient storage failures.
const retryAfterSeconds = "1"

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// badRequest answers a request rejected before it reached the service layer,
// e.g. a malformed path parameter.
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody("invalid_parameter", message))
}

// invalidBody answers a request whose body could not be decoded.
func invalidBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", "invalid request body: "+err.Error()))
}

// writeError maps a service error onto the HTTP error contract.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		capErr  *domain.CapacityExceededError
		destErr *domain.DestinationMismatchError
		nfErr   *domain.NotFoundError
	)

	switch {
	case errors.As(err, &capErr):
		body := errorBody("capacity_exceeded", capErr.Error())
		available := capErr.Available
		body.Error.AvailableSpace = &available
		writeJSON(w, http.StatusConflict, body)

	case errors.As(err, &destErr):
		body := errorBody("destination_mismatch", destErr.Error())
		from, to := destErr.From, destErr.To
		body.Error.From, body.Error.To = &from, &to
		writeJSON(w, http.StatusConflict, body)

	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", nfErr.Error()))

	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "resource not found"))

	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity,
			errorBody("validation_error", unwrapMessage(err, domain.ErrValidation)))

	case errors.Is(err, domain.ErrInvalidReference):
		writeJSON(w, http.StatusUnprocessableEntity,
			errorBody("invalid_reference", unwrapMessage(err, domain.ErrInvalidReference)))

	case domain.IsRetryable(err):
		s.log.ErrorContext(r.Context(), "storage unavailable", "path", r.URL.Path, "error", err)
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable,
			errorBody("storage_unavailable", "storage temporarily unavailable, retry the request"))

	case errors.Is(err, domain.ErrDataIntegrity):
		s.log.ErrorContext(r.Context(), "stored data is inconsistent", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("data_integrity",
			"stored data failed an integrity check; retrying will not help"))

	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

// unwrapMessage extracts the human-readable part after a sentinel prefix.
// e.g. "service.TripService.Create: validation error: unknown destination" → "unknown destination"
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, sentinel.Error()+": "); ok && after != "" {
		return after
	}
	return msg
}
