package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

// Entries move PENDING -> PROCESSING -> SENT. A failed delivery goes to
// FAILED with a backoff deadline, and to DEAD once MaxRetries is spent.
// Only an operator moves DEAD back to PENDING.
const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

var (
	errNotClaimable = errors.New("outbox: only pending or failed entries can be claimed")
	errNotDead      = errors.New("outbox: only dead entries can be requeued")
)

// OutboxEntry is one serialized domain event. It is inserted by the same
// transaction that changed the aggregate, so an event exists if and only if
// its state change committed.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

func (e *OutboxEntry) IsDead() bool { return e.Status == OutboxStatusDead }

func (e *OutboxEntry) MarkProcessing() error {
	switch e.Status {
	case OutboxStatusPending, OutboxStatusFailed:
	default:
		return errNotClaimable
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed counts an attempt. The n-th failure waits DefaultBaseBackoff*2^(n-1)
// before the entry becomes retryable again.
func (e *OutboxEntry) MarkFailed(reason string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = reason
	e.UpdatedAt = now

	if e.RetryCount >= e.MaxRetries {
		e.Status, e.NextRetryAt = OutboxStatusDead, nil
		return
	}
	next := now.Add(DefaultBaseBackoff << (e.RetryCount - 1))
	e.Status, e.NextRetryAt = OutboxStatusFailed, &next
}

// ResetForRetry requeues a dead entry with its retry budget restored.
func (e *OutboxEntry) ResetForRetry() error {
	if !e.IsDead() {
		return errNotDead
	}
	e.Status = OutboxStatusPending
	e.RetryCount, e.LastError, e.NextRetryAt = 0, "", nil
	e.UpdatedAt = time.Now()
	return nil
}

type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	// MarkProcessing claims the given ids and returns only those this caller
	// won; concurrent processors never receive the same entry.
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
