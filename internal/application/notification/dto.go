package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/notification"
)

// NotificationResponse represents a notification in API responses and realtime frames
type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}

// ListInput filters a user's notifications
type ListInput struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

// UnreadCountResponse carries the badge counter
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// Draft is a notification about to be delivered
type Draft struct {
	UserID  uuid.UUID
	Type    notification.Type
	Title   string
	Message string
	Link    string
}
