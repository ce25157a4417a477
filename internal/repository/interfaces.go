package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint.
// Callers decide whether that is a conflict to surface or a record to
// re-resolve.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastSeen(ctx context.Context, id uuid.UUID) error
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	UnreadCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error)
}

type MessageRepository interface {
	// Append durably records the message and advances the owning
	// conversation's last-message pointer in one transaction. The ledger
	// seq and creation time are assigned by the store and filled in on msg.
	Append(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	GetByNonce(ctx context.Context, conversationID, senderID uuid.UUID, nonce string) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error)
	ToggleFavorite(ctx context.Context, messageID uuid.UUID) (*domain.Message, error)
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, req *domain.FriendRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error)
	GetPendingByUsers(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.FriendRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.FriendRequest, error)
	ListIncomingPending(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error)
}

type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Call, error)
	Update(ctx context.Context, call *domain.Call) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Call, error)
}
