package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OutboxProcessorConfig holds configuration for the outbox processor
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// OutboxProcessorConfigFrom maps application config onto the processor settings
func OutboxProcessorConfigFrom(cfg config.OutboxConfig) OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        cfg.BatchSize,
		PollInterval:     cfg.PollInterval,
		CleanupEnabled:   cfg.CleanupRetention > 0,
		CleanupRetention: cfg.CleanupRetention,
		CleanupInterval:  cfg.CleanupInterval,
	}
}

// DeliveryObserver receives outbox delivery outcomes, typically Prometheus metrics
type DeliveryObserver interface {
	ObserveOutboxDelivery(eventType string, status shared.OutboxStatus)
	ObserveOutboxBacklog(counts map[shared.OutboxStatus]int64)
}

// OutboxProcessor relays outbox entries to the event bus in the background
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	observer   DeliveryObserver

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventPublisher,
	serializer *EventSerializer,
	cfg OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     cfg,
		logger:     logger.Named("outbox"),
		wake:       make(chan struct{}, 1),
	}
}

// WithObserver attaches a delivery observer
func (p *OutboxProcessor) WithObserver(o DeliveryObserver) *OutboxProcessor {
	p.observer = o
	return p
}

// Notify asks the processor to poll now instead of waiting for the next tick.
// It never blocks.
func (p *OutboxProcessor) Notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Start starts the background loops
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.processLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("Outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop cancels the loops and waits for the in-flight batch
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) processLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.wake:
		}
		p.ProcessBatch(ctx)
	}
}

// ProcessBatch delivers one batch of pending entries and one batch of due retries.
// It returns the number of entries delivered.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) int {
	sent := 0

	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("Failed to find pending outbox entries", zap.Error(err))
		return sent
	}
	sent += p.processEntries(ctx, pending)

	retryable, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("Failed to find retryable outbox entries", zap.Error(err))
		return sent
	}
	sent += p.processEntries(ctx, retryable)

	if p.observer != nil {
		if counts, err := p.repo.CountByStatus(ctx); err == nil {
			p.observer.ObserveOutboxBacklog(counts)
		}
	}
	return sent
}

func (p *OutboxProcessor) processEntries(ctx context.Context, entries []*shared.OutboxEntry) int {
	if len(entries) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("Failed to claim outbox entries", zap.Error(err))
		return 0
	}

	sent := 0
	for _, entry := range claimed {
		if p.processEntry(ctx, entry) {
			sent++
		}
	}
	return sent
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry *shared.OutboxEntry) bool {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.eventBus.Publish(ctx, event)
	}
	if err != nil {
		p.fail(ctx, entry, err)
		return false
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("Failed to mark outbox entry as sent",
			zap.String("event_id", entry.EventID.String()),
			zap.Error(err),
		)
		return false
	}
	p.observe(entry)
	p.logger.Debug("Event delivered",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)
	return true
}

func (p *OutboxProcessor) fail(ctx context.Context, entry *shared.OutboxEntry, cause error) {
	entry.MarkFailed(cause.Error())

	fields := []zap.Field{
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_id", entry.AggregateID.String()),
		zap.Int("retry_count", entry.RetryCount),
		zap.Error(cause),
	}
	if entry.IsDead() {
		p.logger.Warn("Event moved to dead letter", fields...)
	} else {
		p.logger.Error("Event delivery failed", fields...)
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("Failed to update outbox entry", zap.Error(err))
	}
	p.observe(entry)
}

func (p *OutboxProcessor) observe(entry *shared.OutboxEntry) {
	if p.observer != nil {
		p.observer.ObserveOutboxDelivery(entry.EventType, entry.Status)
	}
}

func (p *OutboxProcessor) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("Failed to clean up outbox entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("Cleaned up delivered outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
