// Package notification delivers per-user notifications and keeps their read state.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/notification"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/realtime"
	"go.uber.org/zap"
)

// ErrNotFound hides notifications of other users as well as missing ones
var ErrNotFound = shared.NewDomainError("NOTIFICATION_NOT_FOUND", "Notification not found")

// Publisher pushes frames to realtime subscribers of a topic
type Publisher interface {
	Publish(ctx context.Context, topic, frameType string, data any) error
}

// NotificationService manages notifications
type NotificationService struct {
	repo      notification.Repository
	publisher Publisher
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService.
// publisher may be nil, in which case notifications are only stored.
func NewNotificationService(repo notification.Repository, publisher Publisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, logger: logger}
}

// Notify stores the drafts and pushes each one to its recipient's realtime topic.
// A failed push is logged, the stored notification stays.
func (s *NotificationService) Notify(ctx context.Context, drafts ...Draft) error {
	if len(drafts) == 0 {
		return nil
	}
	ns := make([]*notification.Notification, 0, len(drafts))
	for _, d := range drafts {
		n, err := notification.New(d.UserID, d.Type, d.Title, d.Message, d.Link)
		if err != nil {
			return err
		}
		ns = append(ns, n)
	}
	if err := s.repo.Create(ctx, ns...); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	if s.publisher == nil {
		return nil
	}
	for _, n := range ns {
		if err := s.publisher.Publish(ctx, realtime.UserTopic(n.UserID), realtime.FrameNotification, ToNotificationResponse(n)); err != nil {
			s.logger.Warn("Failed to push notification",
				zap.String("user_id", n.UserID.String()),
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, input ListInput) (shared.Paginated[NotificationResponse], error) {
	filter := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	ns, total, err := s.repo.FindByUser(ctx, userID, input.UnreadOnly, filter)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, err
	}
	items := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		items[i] = ToNotificationResponse(n)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Count: count}, nil
}

// MarkRead flags one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		n.MarkRead()
		if err := s.repo.Update(ctx, n); err != nil {
			return nil, err
		}
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// MarkAllRead flags every unread notification of the user
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllReadResponse, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Updated: updated}, nil
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) owned(ctx context.Context, userID, id uuid.UUID) (*notification.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotFound
	}
	return n, nil
}
