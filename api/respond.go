package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/internal/listing"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response", slog.Any("err", err))
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps domain and upstream errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var fe forms.Errors
	var apiErr *marketplace.APIError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, errorBody{Error: "validation failed", Fields: fe}, http.StatusUnprocessableEntity)
	case errors.Is(err, workflow.ErrReasonRequired):
		writeJSON(w, errorBody{Error: "validation failed", Fields: map[string]string{"rejectionReason": "Rejection reason is required"}}, http.StatusUnprocessableEntity)
	case errors.Is(err, workflow.ErrInvalidTransition):
		writeJSON(w, errorBody{Error: err.Error()}, http.StatusUnprocessableEntity)
	case errors.Is(err, workflow.ErrAlreadyApplied),
		errors.Is(err, workflow.ErrSubmitting),
		errors.Is(err, session.ErrBusy):
		writeJSON(w, errorBody{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, workflow.ErrForbidden):
		writeJSON(w, errorBody{Error: err.Error()}, http.StatusForbidden)
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, marketplace.ErrUnauthorized):
		writeJSON(w, errorBody{Error: "not authenticated"}, http.StatusUnauthorized)
	case errors.Is(err, marketplace.ErrNotFound):
		writeJSON(w, errorBody{Error: "not found"}, http.StatusNotFound)
	case errors.Is(err, marketplace.ErrCircuitOpen):
		writeJSON(w, errorBody{Error: "marketplace unavailable"}, http.StatusServiceUnavailable)
	case errors.Is(err, listing.ErrClosed):
		writeJSON(w, errorBody{Error: "view closed"}, http.StatusConflict)
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		writeJSON(w, errorBody{Error: apiErr.Message}, apiErr.StatusCode)
	default:
		logger.Error("upstream request failed", slog.Any("err", err))
		writeJSON(w, errorBody{Error: "upstream request failed"}, http.StatusBadGateway)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, errorBody{Error: "invalid request"}, http.StatusBadRequest)
		return false
	}
	return true
}
