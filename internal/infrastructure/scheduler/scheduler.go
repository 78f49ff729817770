package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SchedulerConfig holds worker pool configuration
type SchedulerConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:    4,
		QueueSize:  256,
		JobTimeout: 30 * time.Second,
		MaxRetries: 5,
		RetryDelay: 2 * time.Second,
	}
}

// SchedulerConfigFrom maps the settlement section of the app config
func SchedulerConfigFrom(cfg config.SettlementConfig) SchedulerConfig {
	return SchedulerConfig{
		Workers:    cfg.Workers,
		QueueSize:  cfg.QueueSize,
		JobTimeout: cfg.JobTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}
}

// JobObserver receives job outcomes, typically for metrics
type JobObserver interface {
	ObserveJob(kind JobKind, status JobStatus, duration time.Duration)
}

// Scheduler runs lifecycle jobs on a bounded worker pool.
// At most one job per Key is queued, waiting for retry, or running at any time.
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	observer JobObserver
	logger   *zap.Logger
	now      func() time.Time

	jobs     chan *Job
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	inflight map[string]struct{}
	timers   map[string]*time.Timer
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	def := DefaultSchedulerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	return &Scheduler{
		config:   cfg,
		executor: executor,
		logger:   logger,
		now:      time.Now,
		jobs:     make(chan *Job, cfg.QueueSize),
		inflight: make(map[string]struct{}),
		timers:   make(map[string]*time.Timer),
	}
}

// WithObserver registers an observer for job outcomes
func (s *Scheduler) WithObserver(o JobObserver) *Scheduler {
	s.observer = o
	return s
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Settlement scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Int("max_retries", s.config.MaxRetries),
	)
	return nil
}

// Stop cancels pending retries and waits for running jobs to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
		delete(s.inflight, key)
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Settlement scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Settlement scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit enqueues a job. It returns ErrJobInFlight when a job with the same
// key is already queued or running.
func (s *Scheduler) Submit(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrSchedulerNotRunning
	}
	key := job.Key()
	if _, ok := s.inflight[key]; ok {
		return ErrJobInFlight
	}

	select {
	case s.jobs <- job:
		s.inflight[key] = struct{}{}
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("group_buy_id", job.GroupBuyID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Enqueue submits a job for the group buy with the configured retry budget.
// A job that is already in flight counts as enqueued.
func (s *Scheduler) Enqueue(kind JobKind, groupBuyID uuid.UUID) error {
	err := s.Submit(NewJob(kind, groupBuyID, s.config.MaxRetries))
	if errors.Is(err, ErrJobInFlight) {
		return nil
	}
	return err
}

// InFlight returns the number of queued, waiting or running jobs
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	start := s.now()
	job.Start(start)

	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("group_buy_id", job.GroupBuyID.String()),
		zap.Int("attempt", job.Attempts),
	)

	err := s.execute(ctx, job)
	elapsed := s.now().Sub(start)
	if err == nil {
		job.Complete(s.now())
		s.observe(job, elapsed)
		s.release(job)
		log.Debug("Job completed", zap.Duration("duration", elapsed))
		return
	}

	job.Fail(s.now(), err)
	s.observe(job, elapsed)
	if !job.ShouldRetry() || ctx.Err() != nil {
		s.release(job)
		log.Error("Job failed permanently", zap.Error(err))
		return
	}

	delay := job.RetryDelay(s.config.RetryDelay)
	log.Warn("Job failed, scheduling retry", zap.Error(err), zap.Duration("retry_in", delay))
	s.scheduleRetry(job, delay)
}

// execute runs the executor with a per-job timeout and converts panics to errors
func (s *Scheduler) execute(ctx context.Context, job *Job) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = errPanic{value: r}
		}
	}()
	return s.executor.Execute(jobCtx, job)
}

func (s *Scheduler) scheduleRetry(job *Job, delay time.Duration) {
	key := job.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		delete(s.inflight, key)
		return
	}
	job.Status = JobStatusPending
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.timers, key)
		if !s.running {
			delete(s.inflight, key)
			return
		}
		select {
		case s.jobs <- job:
		default:
			delete(s.inflight, key)
			s.logger.Warn("Dropped retry, job queue is full", zap.String("job_id", job.ID.String()))
		}
	})
}

func (s *Scheduler) release(job *Job) {
	s.mu.Lock()
	delete(s.inflight, job.Key())
	s.mu.Unlock()
}

func (s *Scheduler) observe(job *Job, d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveJob(job.Kind, job.Status, d)
	}
}

type errPanic struct{ value any }

func (e errPanic) Error() string {
	return fmt.Sprintf("job panicked: %v", e.value)
}
