// Package jobs runs scan delegations off the request path. A Queue accepts
// ScanJobs and hands them to a Handler on a fixed pool of workers. Handlers
// run under a context that is detached from cancellation, so a scan that
// has started is allowed to finish during shutdown.
package jobs

import (
	"context"
	"errors"
)

var (
	ErrQueueFull   = errors.New("job queue is full")
	ErrQueueClosed = errors.New("job queue is closed")
)

// ScanJob asks a worker to execute one scan record.
type ScanJob struct {
	ScanID string `json:"scan_id"`
}

// Handler processes one job. Returned errors are logged; jobs are never
// retried.
type Handler func(ctx context.Context, job ScanJob) error

type Queue interface {
	Enqueue(ctx context.Context, job ScanJob) error
	// Start launches the workers and returns. Workers stop taking new jobs
	// when ctx is cancelled or the queue is closed.
	Start(ctx context.Context, h Handler) error
	// Close stops accepting jobs and waits for running handlers.
	Close() error
}
