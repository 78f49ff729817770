package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and audit timestamps.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh id with both timestamps set to now.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot is embedded by profiles and group buys. Version backs the
// optimistic lock the repositories check on update; the event buffer holds
// what a command produced until the application layer stages it in the outbox.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent buffers an event raised by a state change.
func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.pending = append(a.pending, e)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

// ClearDomainEvents drops the buffer once its events are committed.
func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }
