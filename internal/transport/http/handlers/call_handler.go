package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type CallHandler struct {
	callService *service.CallService
}

func NewCallHandler(callService *service.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

func (h *CallHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		ReceiverID uuid.UUID `json:"receiver_id"`
		Type       string    `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.ReceiverID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_RECEIVER", "receiver_id is required")
		return
	}

	call, err := h.callService.Create(r.Context(), userID, input.ReceiverID, input.Type)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCallType):
			writeError(w, http.StatusBadRequest, "INVALID_TYPE", "Call type must be audio or video")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			writeInternal(w, "create call", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, call)
}

func (h *CallHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	callID, err := uuid.Parse(r.PathValue("callId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid call ID")
		return
	}

	var input service.UpdateCallInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	call, err := h.callService.UpdateStatus(r.Context(), userID, callID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCallStatus):
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Call status must be missed or completed")
		case errors.Is(err, service.ErrDurationRequired):
			writeError(w, http.StatusBadRequest, "MISSING_DURATION", "Completing a call requires a duration")
		case errors.Is(err, service.ErrCallNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Call not found")
		case errors.Is(err, service.ErrNotCallParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this call")
		default:
			writeInternal(w, "update call", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	calls, err := h.callService.History(r.Context(), userID)
	if err != nil {
		writeInternal(w, "call history", err)
		return
	}

	writeJSON(w, http.StatusOK, calls)
}
