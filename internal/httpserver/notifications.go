package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"crm/internal/domain"
)

type broadcastRequest struct {
	Message    string `json:"message" validate:"required"`
	TargetType string `json:"targetType" validate:"required"`
}

type broadcastResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	domain.DispatchSummary
}

type broadcastAccepted struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Total   int    `json:"total"`
}

func (a *API) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	if a.validate.Struct(req) != nil {
		writeError(w, http.StatusBadRequest, ErrBroadcastRequired)
		return
	}
	claims, _ := ClaimsFrom(r.Context())

	res, err := a.Notifications.Broadcast(r.Context(), domain.BroadcastRequest{
		Message:     req.Message,
		Audience:    domain.ParseAudience(req.TargetType),
		RequestedBy: claims.UserID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, ErrBroadcastRequired)
			return
		}
		slog.Error("broadcast failed", "err", err, "target_type", req.TargetType, "user_id", claims.UserID)
		if errors.Is(err, domain.ErrGatewayNotReady) {
			writeError(w, http.StatusInternalServerError, ErrGatewayUnavailable)
			return
		}
		writeError(w, http.StatusInternalServerError, ErrServer)
		return
	}

	if res.Async {
		writeJSON(w, http.StatusAccepted, broadcastAccepted{
			ID:      res.ID,
			Message: "Notification queued",
			Total:   res.Total,
		})
		return
	}
	writeJSON(w, http.StatusOK, broadcastResponse{Success: true, ID: res.ID, DispatchSummary: res.Summary})
}

func (a *API) handleGetBroadcast(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	st, ok := a.Notifications.GetBroadcast(id)
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := a.Notifications.ListNotifications(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
