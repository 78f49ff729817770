package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobKind identifies the lifecycle transition a job performs
type JobKind string

const (
	JobKindExpire JobKind = "EXPIRE"
	JobKindSettle JobKind = "SETTLE"
	JobKindRefund JobKind = "REFUND"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one lifecycle transition for one group buy
type Job struct {
	ID         uuid.UUID
	Kind       JobKind
	GroupBuyID uuid.UUID
	Status     JobStatus
	Error      string
	Attempts   int
	MaxRetries int
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// NewJob creates a pending job
func NewJob(kind JobKind, groupBuyID uuid.UUID, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		GroupBuyID: groupBuyID,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Key identifies jobs that must not run concurrently
func (j *Job) Key() string {
	return fmt.Sprintf("%s:%s", j.Kind, j.GroupBuyID)
}

// Start marks the job as running
func (j *Job) Start(now time.Time) {
	j.Status = JobStatusRunning
	j.Attempts++
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete(now time.Time) {
	j.Status = JobStatusSuccess
	j.FinishedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(now time.Time, err error) {
	j.Status = JobStatusFailed
	j.FinishedAt = &now
	j.Error = err.Error()
}

// ShouldRetry returns true if the failed job has attempts left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.Attempts <= j.MaxRetries
}

// RetryDelay is base doubled per completed attempt: base, 2·base, 4·base, ...
func (j *Job) RetryDelay(base time.Duration) time.Duration {
	if j.Attempts <= 1 {
		return base
	}
	return base << (j.Attempts - 1)
}

// JobExecutor runs a job. Returning an error schedules a retry.
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobExecutorFunc adapts a function to JobExecutor
type JobExecutorFunc func(ctx context.Context, job *Job) error

// Execute calls f(ctx, job)
func (f JobExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}
