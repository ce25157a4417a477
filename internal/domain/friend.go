package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

type FriendRequest struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	// Joined fields
	SenderUsername    string  `json:"sender_username,omitempty"`
	SenderAvatarURL   *string `json:"sender_avatar_url,omitempty"`
	ReceiverUsername  string  `json:"receiver_username,omitempty"`
	ReceiverAvatarURL *string `json:"receiver_avatar_url,omitempty"`
}
