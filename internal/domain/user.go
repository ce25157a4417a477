package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID            `json:"id"`
	Email         string               `json:"email"`
	Username      string               `json:"username"`
	PasswordHash  string               `json:"-"`
	AvatarURL     *string              `json:"avatar_url,omitempty"`
	LastSeen      time.Time            `json:"last_seen"`
	Notifications NotificationSettings `json:"notification_settings"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NotificationSettings is the per-user push preference set.
type NotificationSettings struct {
	MessageNotifications       bool `json:"message_notifications"`
	CallNotifications          bool `json:"call_notifications"`
	FriendRequestNotifications bool `json:"friend_request_notifications"`
}

// DefaultNotificationSettings is applied at registration.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		MessageNotifications:       true,
		CallNotifications:          true,
		FriendRequestNotifications: true,
	}
}
