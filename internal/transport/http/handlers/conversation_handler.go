package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type ConversationHandler struct {
	convService *service.ConversationService
}

func NewConversationHandler(convService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convService: convService}
}

// GetOrCreate resolves the conversation with another user, creating it on
// first contact. Concurrent calls for the same pair get the same record.
func (h *ConversationHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		ParticipantID uuid.UUID `json:"participant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.ParticipantID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_PARTICIPANT", "participant_id is required")
		return
	}

	conv, err := h.convService.GetOrCreate(r.Context(), userID, input.ParticipantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotChatSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_CHAT_SELF", "Cannot start a conversation with yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			writeInternal(w, "get or create conversation", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	convs, err := h.convService.List(r.Context(), userID)
	if err != nil {
		writeInternal(w, "list conversations", err)
		return
	}

	writeJSON(w, http.StatusOK, convs)
}

func (h *ConversationHandler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	counts, err := h.convService.UnreadCounts(r.Context(), userID)
	if err != nil {
		writeInternal(w, "unread counts", err)
		return
	}

	type entry struct {
		ConversationID uuid.UUID `json:"conversation_id"`
		Count          int       `json:"count"`
	}
	out := make([]entry, 0, len(counts))
	for convID, count := range counts {
		out = append(out, entry{ConversationID: convID, Count: count})
	}

	writeJSON(w, http.StatusOK, out)
}
