package shared

import "context"

// EventHandler reacts to committed domain events. Delivery is at least once,
// so handlers are wrapped with an idempotency guard before subscribing.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types to receive; nil subscribes to everything.
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

type EventBus interface {
	EventPublisher
	// Subscribe registers handler for eventTypes, falling back to
	// handler.EventTypes() when none are given.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver stages events inside the caller's transaction. tx is the
// transaction handle of the persistence layer (a *gorm.DB).
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, tx any, events ...DomainEvent) error
}
