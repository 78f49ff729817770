package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches events synchronously to registered handlers.
// Publish returns the joined handler errors so the outbox can retry the delivery.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers every event to all its handlers.
// A failing handler does not stop the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("handler", handlerName(handler)),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for specific event types, or the handler's own types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed",
		zap.String("handler", handlerName(handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start is a no-op; dispatch happens on the caller's goroutine
func (b *InMemoryEventBus) Start(context.Context) error {
	return nil
}

// Stop is a no-op
func (b *InMemoryEventBus) Stop(context.Context) error {
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", handlerName(handler), r)
		}
	}()
	return handler.Handle(ctx, event)
}

// NamedHandler is implemented by handlers that want a stable name in logs and idempotency keys
type NamedHandler interface {
	Name() string
}

func handlerName(h shared.EventHandler) string {
	if n, ok := h.(NamedHandler); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
