package scheduler

import "errors"

// Submit errors. Callers treat ErrJobInFlight as success: the same settlement
// step for the same group buy is already queued or running.
var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: queue full")
	ErrJobInFlight         = errors.New("scheduler: job already in flight")
	ErrInvalidConfig       = errors.New("scheduler: invalid configuration")
)
