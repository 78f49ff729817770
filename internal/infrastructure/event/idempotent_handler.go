package event

import (
	"context"
	"time"

	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler skips events its inner handler already processed successfully.
// Keys are scoped per handler, so one event can still reach every subscriber once.
type IdempotentHandler struct {
	inner  shared.EventHandler
	store  shared.IdempotencyStore
	ttl    time.Duration
	name   string
	logger *zap.Logger
}

// NewIdempotentHandler wraps a handler with an idempotency store
func NewIdempotentHandler(inner shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	return &IdempotentHandler{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		name:   handlerName(inner),
		logger: logger,
	}
}

// Handle runs the inner handler unless the event was already handled.
// The key is recorded only after success so failed deliveries are retried.
// A store outage falls back to running the handler.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.key(event)

	seen, err := h.store.IsProcessed(ctx, key)
	if err != nil {
		h.logger.Warn("Idempotency check failed, processing anyway",
			zap.String("key", key),
			zap.Error(err),
		)
	} else if seen {
		h.logger.Debug("Duplicate event skipped",
			zap.String("handler", h.name),
			zap.String("event_id", event.EventID().String()),
		)
		return nil
	}

	if err := h.inner.Handle(ctx, event); err != nil {
		return err
	}

	if _, err := h.store.MarkProcessed(ctx, key, h.ttl); err != nil {
		h.logger.Warn("Failed to record processed event", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// EventTypes delegates to the inner handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.inner.EventTypes()
}

// Name returns the inner handler name
func (h *IdempotentHandler) Name() string {
	return h.name
}

func (h *IdempotentHandler) key(event shared.DomainEvent) string {
	return h.name + ":" + event.EventID().String()
}

// WrapHandlersWithIdempotency wraps every handler with the same store and TTL
func WrapHandlersWithIdempotency(handlers []shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) []shared.EventHandler {
	out := make([]shared.EventHandler, len(handlers))
	for i, h := range handlers {
		out[i] = NewIdempotentHandler(h, store, ttl, logger)
	}
	return out
}
