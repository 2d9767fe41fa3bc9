package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"payables/internal/core"
)

// retryAfterSeconds is advertised on 503 responses for transaction-level conflicts.
const retryAfterSeconds = "1"

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a core error to its HTTP status and error code. Anything that is
// not a core error is logged and reported as a 500 without its details.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *core.NotFoundError
		conflict   *core.ConflictError
		validation *core.ValidationError
		invalid    *core.InvalidStateError
		retryable  *core.RetryableError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, r, notFound.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &conflict):
		writeErrorBody(w, r, errorResponse{Error: conflict.Error(), Code: "CONFLICT", Field: conflict.Field}, http.StatusConflict)
	case errors.As(err, &validation):
		writeErrorBody(w, r, errorResponse{Error: validation.Error(), Code: "VALIDATION_ERROR", Field: validation.Field}, http.StatusBadRequest)
	case errors.As(err, &invalid):
		writeError(w, r, invalid.Error(), "INVALID_STATE", http.StatusUnprocessableEntity)
	case errors.As(err, &retryable):
		h.logger.Warn("retryable failure",
			zap.Error(err),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, r, "the request conflicted with a concurrent update, retry it", "RETRYABLE", http.StatusServiceUnavailable)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, err.Error(), "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
