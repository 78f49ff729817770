package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// Repository defines persistence for notifications
type Repository interface {
	Create(ctx context.Context, n ...*Notification) error
	Update(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
