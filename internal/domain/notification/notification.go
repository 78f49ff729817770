package notification

import (
	"strings"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// Type categorizes a notification for display
type Type string

const (
	TypeInfo     Type = "info"
	TypeSuccess  Type = "success"
	TypeWarning  Type = "warning"
	TypeGroupBuy Type = "group_buy"
	TypeOrder    Type = "order"
	TypeChat     Type = "chat"
)

// IsValid returns true if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeGroupBuy, TypeOrder, TypeChat:
		return true
	}
	return false
}

// Notification is a message addressed to one user
type Notification struct {
	shared.BaseEntity
	UserID  uuid.UUID
	Title   string
	Message string
	Type    Type
	IsRead  bool
	Link    string
}

// New creates an unread notification
func New(userID uuid.UUID, typ Type, title, message, link string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title is required")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Title:      title,
		Message:    strings.TrimSpace(message),
		Type:       typ,
		Link:       link,
	}, nil
}

// MarkRead flags the notification as seen
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.Touch()
}
