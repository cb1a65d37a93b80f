package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/internal/middleware"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/service"
)

type CallHandler struct {
	calls *service.CallService
}

func NewCallHandler(calls *service.CallService) *CallHandler {
	return &CallHandler{calls: calls}
}

// StartCall schedules a call with another user and drops the invite into
// the message thread.
func (h *CallHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req struct {
		GuestID       string  `json:"guest_id"`
		ApplicationID *string `json:"application_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.GuestID == "" || req.GuestID == userID {
		writeError(w, http.StatusBadRequest, "invalid guest_id")
		return
	}
	call, err := h.calls.Start(r.Context(), userID, req.GuestID, req.ApplicationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start call")
		return
	}
	writeJSON(w, http.StatusCreated, call)
}

func (h *CallHandler) ActivateCall(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	call, err := h.calls.Activate(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req struct {
		DurationSeconds int `json:"duration_seconds"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	}
	call, err := h.calls.End(r.Context(), userID, chi.URLParam(r, "id"), req.DurationSeconds)
	if err != nil {
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func writeCallError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "call not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "not a call participant")
	case errors.Is(err, service.ErrCallEnded):
		writeError(w, http.StatusConflict, "call already ended")
	default:
		writeError(w, http.StatusInternalServerError, "call update failed")
	}
}
