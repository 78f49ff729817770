package models

import (
	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/chat"
)

// MessageModel is the persistence model for chat messages
type MessageModel struct {
	BaseModel
	GroupBuyID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_chat_messages_group_created,priority:1"`
	SenderID    *uuid.UUID       `gorm:"type:uuid"`
	Content     string           `gorm:"type:text;not null"`
	MessageType chat.MessageType `gorm:"type:varchar(20);not null;default:'text'"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the persistence model to a domain Message
func (m *MessageModel) ToDomain() *chat.Message {
	return &chat.Message{
		BaseEntity:  m.Entity(),
		GroupBuyID:  m.GroupBuyID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		MessageType: m.MessageType,
	}
}

// MessageModelFromDomain creates a new persistence model from a domain Message
func MessageModelFromDomain(msg *chat.Message) *MessageModel {
	m := &MessageModel{
		GroupBuyID:  msg.GroupBuyID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
	}
	m.SetEntity(msg.BaseEntity)
	return m
}
