package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email is required")
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), userID, input.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrCannotFriendSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_FRIEND_SELF", "Cannot send a friend request to yourself")
		case errors.Is(err, service.ErrRequestAlreadySent):
			writeError(w, http.StatusBadRequest, "ALREADY_SENT", "Friend request already sent")
		default:
			writeInternal(w, "send friend request", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, err := uuid.Parse(r.PathValue("requestId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req, err := h.friendService.Respond(r.Context(), userID, requestID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFriendStatus):
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be accepted or rejected")
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Friend request not found")
		case errors.Is(err, service.ErrNotRequestReceiver):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the request receiver can respond")
		case errors.Is(err, service.ErrAlreadyResponded):
			writeError(w, http.StatusConflict, "ALREADY_RESPONDED", "Friend request already responded to")
		default:
			writeInternal(w, "respond friend request", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *FriendHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.friendService.ListIncoming(r.Context(), userID)
	if err != nil {
		writeInternal(w, "list friend requests", err)
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}
