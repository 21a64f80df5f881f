package jobs

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/eastsecure/internal/logging"
)

// MemoryQueue is a buffered channel drained by a worker pool. Jobs are lost
// if the process exits; their scan records stay pending.
type MemoryQueue struct {
	jobs    chan ScanJob
	workers int
	logger  logging.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewMemoryQueue(size, workers int, l logging.Logger) *MemoryQueue {
	if workers < 1 {
		workers = 1
	}
	return &MemoryQueue{
		jobs:    make(chan ScanJob, size),
		workers: workers,
		logger:  l,
	}
}

// Enqueue never blocks: a full buffer yields ErrQueueFull.
func (q *MemoryQueue) Enqueue(_ context.Context, job ScanJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Start(ctx context.Context, h Handler) error {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			q.work(ctx, worker, h)
		}(i)
	}
	return nil
}

func (q *MemoryQueue) work(ctx context.Context, worker int, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			if err := h(context.WithoutCancel(ctx), job); err != nil {
				q.logger.Error(ctx, "scan job failed", "worker", worker, "scan_id", job.ScanID, "error", err)
			}
		}
	}
}

// Close lets the workers finish what is already buffered, unless their
// context has been cancelled, and waits for them.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}
