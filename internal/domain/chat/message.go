package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// MaxContentLength is the longest message body accepted, in characters
const MaxContentLength = 1000

// MessageType distinguishes user text, images and lifecycle notices
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeSystem MessageType = "system"
)

// IsValid returns true if the type is known
func (t MessageType) IsValid() bool {
	return t == MessageTypeText || t == MessageTypeImage || t == MessageTypeSystem
}

// Message is one entry in a group buy's conversation
type Message struct {
	shared.BaseEntity
	GroupBuyID  uuid.UUID
	SenderID    *uuid.UUID // nil for system messages
	Content     string
	MessageType MessageType
}

// NewMessage creates a message sent by a user
func NewMessage(groupBuyID, senderID uuid.UUID, content string, msgType MessageType) (*Message, error) {
	if msgType == "" {
		msgType = MessageTypeText
	}
	if msgType == MessageTypeSystem {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Users cannot send system messages")
	}
	if !msgType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Unknown message type")
	}
	m, err := newMessage(groupBuyID, content, msgType)
	if err != nil {
		return nil, err
	}
	m.SenderID = &senderID
	return m, nil
}

// NewSystemMessage creates a lifecycle notice without a sender
func NewSystemMessage(groupBuyID uuid.UUID, content string) (*Message, error) {
	return newMessage(groupBuyID, content, MessageTypeSystem)
}

func newMessage(groupBuyID uuid.UUID, content string, msgType MessageType) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("EMPTY_MESSAGE", "Message cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, shared.NewDomainError("MESSAGE_TOO_LONG", "Message cannot exceed 1000 characters")
	}
	return &Message{
		BaseEntity:  shared.NewBaseEntity(),
		GroupBuyID:  groupBuyID,
		Content:     content,
		MessageType: msgType,
	}, nil
}

// IsSystem reports whether the message was generated by the platform
func (m *Message) IsSystem() bool {
	return m.MessageType == MessageTypeSystem
}

// AggregateTypeMessage names the chat message in events
const AggregateTypeMessage = "ChatMessage"

// EventTypeMessageSent is raised for every stored message
const EventTypeMessageSent = "chat.message_sent"

// MessageSentEvent carries a stored message to realtime and notification subscribers
type MessageSentEvent struct {
	shared.BaseDomainEvent
	MessageID   uuid.UUID   `json:"message_id"`
	GroupBuyID  uuid.UUID   `json:"group_buy_id"`
	SenderID    *uuid.UUID  `json:"sender_id,omitempty"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	SentAt      time.Time   `json:"sent_at"`
}

// NewMessageSentEvent creates a new MessageSentEvent
func NewMessageSentEvent(m *Message) *MessageSentEvent {
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSent, AggregateTypeMessage, m.ID),
		MessageID:       m.ID,
		GroupBuyID:      m.GroupBuyID,
		SenderID:        m.SenderID,
		Content:         m.Content,
		MessageType:     m.MessageType,
		SentAt:          m.CreatedAt,
	}
}
