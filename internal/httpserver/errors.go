package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"crm/internal/domain"
)

const (
	ErrInvalidJSON        = "invalid json"
	ErrInvalidID          = "invalid id"
	ErrServer             = "Server error"
	ErrNotFound           = "not found"
	ErrNoToken            = "No token"
	ErrInvalidTokenMsg    = "Invalid token"
	ErrForbidden          = "Forbidden"
	ErrInvalidCredentials = "Invalid credentials"
	ErrBroadcastRequired  = "message and targetType are required"
	ErrGatewayUnavailable = "WhatsApp gateway not ready"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeServiceError maps a service error onto a status and a client-safe
// message. Anything unclassified is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, ErrInvalidCredentials)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrNotFound)
	case errors.Is(err, domain.ErrGatewayNotReady):
		slog.Error(op+" failed", "err", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, ErrGatewayUnavailable)
	default:
		slog.Error(op+" failed", "err", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, ErrServer)
	}
}
