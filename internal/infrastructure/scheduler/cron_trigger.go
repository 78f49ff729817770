package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DueSource finds group buys that need a lifecycle transition
type DueSource interface {
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	FindIDsByStatus(ctx context.Context, status groupbuy.Status, limit int) ([]uuid.UUID, error)
}

// CronTriggerConfig holds configuration for the sweep trigger
type CronTriggerConfig struct {
	// Schedule is a robfig/cron spec such as "@every 30s" or "*/1 * * * *"
	Schedule  string
	BatchSize int
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Schedule:  "@every 30s",
		BatchSize: 100,
	}
}

// SweepResult counts the jobs one sweep handed to the scheduler
type SweepResult struct {
	Expire int
	Settle int
	Refund int
}

// Total returns the number of jobs enqueued
func (r SweepResult) Total() int {
	return r.Expire + r.Settle + r.Refund
}

// CronTrigger periodically sweeps for due group buys and enqueues
// expire, settle and refund jobs
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	source    DueSource
	logger    *zap.Logger
	now       func() time.Time

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(cfg CronTriggerConfig, scheduler *Scheduler, source DueSource, logger *zap.Logger) *CronTrigger {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultCronTriggerConfig().Schedule
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultCronTriggerConfig().BatchSize
	}
	return &CronTrigger{
		config:    cfg,
		scheduler: scheduler,
		source:    source,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the sweep with cron and starts it
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}

	// A slow sweep must not overlap with the next tick
	cr := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))
	if _, err := cr.AddFunc(c.config.Schedule, func() {
		if _, err := c.Sweep(ctx); err != nil {
			c.logger.Error("Settlement sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, c.config.Schedule, err)
	}

	cr.Start()
	c.cron = cr
	c.isRunning = true

	c.logger.Info("Settlement cron trigger started",
		zap.String("schedule", c.config.Schedule),
		zap.Int("batch_size", c.config.BatchSize),
	)
	return nil
}

// Stop stops the cron and waits for a running sweep to finish
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	cr := c.cron
	c.mu.Unlock()

	select {
	case <-cr.Stop().Done():
		c.logger.Info("Settlement cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep scans the three due sets once and enqueues a job for each row.
// Rows whose job is already in flight are skipped silently.
func (c *CronTrigger) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	var errs []error

	expiring, err := c.source.FindDueForExpiry(ctx, c.now(), c.config.BatchSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("find due for expiry: %w", err))
	}
	result.Expire = c.enqueue(JobKindExpire, expiring)

	full, err := c.source.FindIDsByStatus(ctx, groupbuy.StatusFull, c.config.BatchSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("find full: %w", err))
	}
	result.Settle = c.enqueue(JobKindSettle, full)

	expired, err := c.source.FindIDsByStatus(ctx, groupbuy.StatusExpired, c.config.BatchSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("find expired: %w", err))
	}
	result.Refund = c.enqueue(JobKindRefund, expired)

	if result.Total() > 0 {
		c.logger.Info("Settlement sweep enqueued jobs",
			zap.Int("expire", result.Expire),
			zap.Int("settle", result.Settle),
			zap.Int("refund", result.Refund),
		)
	}
	return result, errors.Join(errs...)
}

func (c *CronTrigger) enqueue(kind JobKind, ids []uuid.UUID) int {
	n := 0
	for _, id := range ids {
		err := c.scheduler.Submit(NewJob(kind, id, c.scheduler.config.MaxRetries))
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrJobInFlight):
		case errors.Is(err, ErrJobQueueFull):
			c.logger.Warn("Job queue full, deferring to next sweep", zap.String("kind", string(kind)))
			return n
		default:
			c.logger.Error("Failed to enqueue job",
				zap.String("kind", string(kind)),
				zap.String("group_buy_id", id.String()),
				zap.Error(err),
			)
			return n
		}
	}
	return n
}
