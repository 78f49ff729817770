package event

import (
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// RegisterAllEvents registers every domain event so the outbox processor can decode it
func RegisterAllEvents(s *EventSerializer) {
	s.Register(groupbuy.EventTypeCreated, func() shared.DomainEvent { return &groupbuy.CreatedEvent{} })
	s.Register(groupbuy.EventTypeJoined, func() shared.DomainEvent { return &groupbuy.JoinedEvent{} })
	s.Register(groupbuy.EventTypeParticipationCancelled, func() shared.DomainEvent { return &groupbuy.ParticipationCancelledEvent{} })
	s.Register(groupbuy.EventTypeFull, func() shared.DomainEvent { return &groupbuy.FullEvent{} })
	s.Register(groupbuy.EventTypeSettled, func() shared.DomainEvent { return &groupbuy.SettledEvent{} })
	s.Register(groupbuy.EventTypeExpired, func() shared.DomainEvent { return &groupbuy.ExpiredEvent{} })
	s.Register(groupbuy.EventTypeRefunded, func() shared.DomainEvent { return &groupbuy.RefundedEvent{} })
	s.Register(groupbuy.EventTypeCancelled, func() shared.DomainEvent { return &groupbuy.CancelledEvent{} })

	s.Register(chat.EventTypeMessageSent, func() shared.DomainEvent { return &chat.MessageSentEvent{} })
}
