// Package event exposes operator actions over the transactional outbox.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const requeueBatch = 100

var errEntryNotFound = shared.NewDomainError("OUTBOX_ENTRY_NOT_FOUND", "Outbox entry not found")

// OutboxService backs the /admin/outbox endpoints: inspecting the backlog and
// putting dead events back into delivery after the cause has been fixed.
type OutboxService struct {
	repo   shared.OutboxRepository
	wake   func()
	logger *zap.Logger
}

func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, wake: func() {}, logger: logger}
}

// OnRequeue registers fn to run after entries are requeued, normally the
// processor's Notify so they go out without waiting for the next poll.
func (s *OutboxService) OnRequeue(fn func()) {
	if fn != nil {
		s.wake = fn
	}
}

// OutboxEntryResponse is the admin view of one entry. The payload is left
// out; it is often large and the event type plus aggregate id identify it.
type OutboxEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newEntryView(e *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

type OutboxStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

type RetryAllResult struct {
	Count int64 `json:"count"`
}

func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, page, pageSize int) (shared.Paginated[OutboxEntryResponse], error) {
	f := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	entries, total, err := s.repo.FindDead(ctx, f.Page, f.PageSize)
	if err != nil {
		return shared.Paginated[OutboxEntryResponse]{}, err
	}
	views := make([]OutboxEntryResponse, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e))
	}
	return shared.NewPaginated(views, total, f.Page, f.PageSize), nil
}

func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := newEntryView(e)
	return &view, nil
}

// RetryDeadEntry moves a DEAD entry back to PENDING with its retry budget
// restored. Entries in any other state are rejected with INVALID_STATE.
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.ResetForRetry(); err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Only dead entries can be retried")
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.wake()

	s.logger.Info("Requeued dead outbox entry",
		zap.String("outbox_id", id.String()),
		zap.String("event_type", e.EventType))
	view := newEntryView(e)
	return &view, nil
}

// RetryAllDeadEntries requeues the whole dead set and returns how many
// entries moved. Requeued rows leave the set, so page one is read until it
// is empty or stops shrinking.
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	var moved int64
	defer func() {
		if moved > 0 {
			s.wake()
		}
	}()

	for {
		batch, _, err := s.repo.FindDead(ctx, 1, requeueBatch)
		if err != nil {
			return moved, err
		}
		before := moved
		for _, e := range batch {
			if e.ResetForRetry() != nil {
				continue
			}
			if err := s.repo.Update(ctx, e); err != nil {
				s.logger.Warn("Failed to requeue outbox entry", zap.String("outbox_id", e.ID.String()), zap.Error(err))
				continue
			}
			moved++
		}
		if len(batch) < requeueBatch || moved == before {
			break
		}
	}

	s.logger.Info("Requeued dead outbox entries", zap.Int64("count", moved))
	return moved, nil
}

func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &OutboxStats{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	stats.Total = stats.Pending + stats.Processing + stats.Sent + stats.Failed + stats.Dead
	return stats, nil
}

func (s *OutboxService) load(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errEntryNotFound
	}
	return e, nil
}
