package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/groupbuy/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher serializes domain events into outbox entries inside the caller's transaction
type OutboxPublisher struct {
	serializer *EventSerializer
	notify     func()
}

// NewOutboxPublisher creates a publisher; notify (optional) is called after entries are staged
func NewOutboxPublisher(serializer *EventSerializer, notify func()) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer, notify: notify}
}

// SaveEvents writes events to the outbox table using the *gorm.DB transaction in txProvider
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok || tx == nil {
		return errors.New("outbox: transaction provider must be *gorm.DB")
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, e := range events {
		payload, err := p.serializer.Serialize(e)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(e, payload))
	}

	if err := NewGormOutboxRepository(tx).Save(ctx, entries...); err != nil {
		return fmt.Errorf("outbox: save %d events: %w", len(entries), err)
	}
	if p.notify != nil {
		p.notify()
	}
	return nil
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
