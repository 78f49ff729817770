package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/groupbuy/backend/internal/domain/shared"
)

// EventFactory returns a zero event ready to be unmarshalled into
type EventFactory func() shared.DomainEvent

// EventSerializer converts domain events to and from their outbox JSON payload
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

// NewEventSerializer creates an empty serializer
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]EventFactory)}
}

// Register makes eventType decodable
func (s *EventSerializer) Register(eventType string, factory EventFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

// Serialize encodes an event as JSON
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	return data, nil
}

// Deserialize decodes a payload into the registered concrete event type
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", eventType, err)
	}
	return event, nil
}

// IsRegistered reports whether eventType can be decoded
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes returns the known event types in sorted order
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
