package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText  = "text"
	MessageTypeFile  = "file"
	MessageTypeVoice = "voice"
)

// ValidMessageType reports whether t is one of the supported message types.
func ValidMessageType(t string) bool {
	return t == MessageTypeText || t == MessageTypeFile || t == MessageTypeVoice
}

// Message is one entry in a conversation's ledger. Seq is assigned by the
// database at insert and is the total order within the conversation.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	SenderID       uuid.UUID   `json:"sender_id"`
	Content        string      `json:"content"`
	Type           string      `json:"type"`
	FileURL        *string     `json:"file_url,omitempty"`
	Seq            int64       `json:"seq"`
	ReadBy         []uuid.UUID `json:"read_by"`
	IsFavorite     bool        `json:"is_favorite"`
	ClientNonce    *string     `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	// Joined fields
	SenderUsername  string  `json:"sender_username,omitempty"`
	SenderAvatarURL *string `json:"sender_avatar_url,omitempty"`
}

// ReadByUser reports whether userID has acknowledged this message.
func (m *Message) ReadByUser(userID uuid.UUID) bool {
	return slices.Contains(m.ReadBy, userID)
}
