package models

import (
	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for notifications
type NotificationModel struct {
	BaseModel
	UserID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1"`
	Title   string            `gorm:"type:varchar(200);not null"`
	Message string            `gorm:"type:text"`
	Type    notification.Type `gorm:"type:varchar(20);not null;default:'info'"`
	IsRead  bool              `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2"`
	Link    string            `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.Entity(),
		UserID:     m.UserID,
		Title:      m.Title,
		Message:    m.Message,
		Type:       m.Type,
		IsRead:     m.IsRead,
		Link:       m.Link,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		UserID:  n.UserID,
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
		IsRead:  n.IsRead,
		Link:    n.Link,
	}
	m.SetEntity(n.BaseEntity)
	return m
}
