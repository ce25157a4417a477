package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
)

// Notifier broadcasts real-time events to connected clients. Best effort:
// a failed push is never an error here, the ledger stays authoritative.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyNewConversation(conv *domain.Conversation, recipientID uuid.UUID)
	NotifyFriendRequest(req *domain.FriendRequest)
	NotifyIncomingCall(call *domain.Call)
}

// PresenceStore answers who is online right now.
type PresenceStore interface {
	IsOnline(ctx context.Context, userID uuid.UUID) bool
	LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool)
}
