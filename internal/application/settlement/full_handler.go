package settlement

import (
	"context"
	"fmt"

	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// GroupBuyFullHandler enqueues settlement as soon as a group buy fills up
// instead of waiting for the next sweep
type GroupBuyFullHandler struct {
	queue  Enqueuer
	logger *zap.Logger
}

// NewGroupBuyFullHandler creates a new GroupBuyFullHandler
func NewGroupBuyFullHandler(queue Enqueuer, logger *zap.Logger) *GroupBuyFullHandler {
	return &GroupBuyFullHandler{queue: queue, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *GroupBuyFullHandler) EventTypes() []string {
	return []string{groupbuy.EventTypeFull}
}

// Handle enqueues the settle job for the filled group buy
func (h *GroupBuyFullHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	full, ok := event.(*groupbuy.FullEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", groupbuy.EventTypeFull, event.EventType())
	}
	if err := h.queue.Enqueue(scheduler.JobKindSettle, full.GroupBuyID); err != nil {
		return fmt.Errorf("enqueue settlement: %w", err)
	}
	h.logger.Debug("Settlement enqueued for full group buy",
		zap.String("group_buy_id", full.GroupBuyID.String()),
	)
	return nil
}

var _ shared.EventHandler = (*GroupBuyFullHandler)(nil)
