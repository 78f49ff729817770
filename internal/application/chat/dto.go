package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/identity"
)

// SenderSummary is the public part of the sender's profile
type SenderSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// MessageResponse represents a chat message in API responses and realtime frames
type MessageResponse struct {
	ID          uuid.UUID      `json:"id"`
	GroupBuyID  uuid.UUID      `json:"group_buy_id"`
	SenderID    *uuid.UUID     `json:"sender_id,omitempty"`
	Content     string         `json:"content"`
	MessageType string         `json:"message_type"`
	CreatedAt   time.Time      `json:"created_at"`
	Sender      *SenderSummary `json:"sender,omitempty"`
}

// ToMessageResponse converts a message, embedding the sender when known
func ToMessageResponse(m *chat.Message, sender *identity.Profile) MessageResponse {
	resp := MessageResponse{
		ID:          m.ID,
		GroupBuyID:  m.GroupBuyID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		MessageType: string(m.MessageType),
		CreatedAt:   m.CreatedAt,
	}
	if sender != nil {
		resp.Sender = &SenderSummary{
			ID:        sender.ID,
			Username:  sender.Username,
			FullName:  sender.FullName,
			AvatarURL: sender.AvatarURL,
		}
	}
	return resp
}

// SendMessageInput is a message typed by a user
type SendMessageInput struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}
