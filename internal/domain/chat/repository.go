package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRepository defines persistence for chat messages
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// FindByGroupBuy returns messages oldest first, optionally only those after since
	FindByGroupBuy(ctx context.Context, groupBuyID uuid.UUID, since *time.Time, limit int) ([]*Message, error)
}
