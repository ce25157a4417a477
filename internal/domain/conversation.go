package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the 1:1 container between exactly two users.
// User1ID/User2ID are stored in canonical order (user1 < user2 by string)
// so the unordered pair maps to a single unique row.
type Conversation struct {
	ID            uuid.UUID  `json:"id"`
	User1ID       uuid.UUID  `json:"user1_id"`
	User2ID       uuid.UUID  `json:"user2_id"`
	LastMessageID *uuid.UUID `json:"last_message_id,omitempty"`
	// LastMessageSeq mirrors the ledger seq of the message the pointer
	// currently references. Pointer advancement is guarded on it.
	LastMessageSeq int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// Joined fields for frontend
	OtherUserID        uuid.UUID `json:"other_user_id"`
	OtherUsername      string    `json:"other_username,omitempty"`
	OtherAvatarURL     *string   `json:"other_avatar_url,omitempty"`
	OtherLastSeen      time.Time `json:"other_last_seen"`
	OtherOnline        bool      `json:"other_online"`
	LastMessagePreview *Message  `json:"last_message,omitempty"`
}

// Participants returns both member ids.
func (c *Conversation) Participants() [2]uuid.UUID {
	return [2]uuid.UUID{c.User1ID, c.User2ID}
}

// HasParticipant reports whether userID is one of the two members.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the member that is not userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// CanonicalPair sorts an unordered user pair into storage order.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
