package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"

	CallStatusMissed    = "missed"
	CallStatusCompleted = "completed"
)

// Call is a call-session record. Created as missed; flips to completed only
// through an explicit status update carrying a duration.
type Call struct {
	ID         uuid.UUID  `json:"id"`
	CallerID   uuid.UUID  `json:"caller_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Duration   *int       `json:"duration,omitempty"`
	// Joined fields
	CallerUsername    string  `json:"caller_username,omitempty"`
	CallerAvatarURL   *string `json:"caller_avatar_url,omitempty"`
	ReceiverUsername  string  `json:"receiver_username,omitempty"`
	ReceiverAvatarURL *string `json:"receiver_avatar_url,omitempty"`
}
