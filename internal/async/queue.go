package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue closed")

// Job is one file picked up by a watcher.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Handler processes a single job. Its error is logged and otherwise ignored.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

type options struct {
	workers        int
	queueSize      int
	processTimeout time.Duration
}

type Option func(*options)

func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.queueSize = n
		}
	}
}

// WithProcessTimeout bounds each handler call; 0 means no bound.
func WithProcessTimeout(d time.Duration) Option {
	return func(o *options) { o.processTimeout = d }
}

// WorkerQueue runs a fixed pool of workers over a buffered channel.
type WorkerQueue struct {
	handler Handler
	opts    options
	logger  *slog.Logger
	jobs    chan Job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerQueue starts the workers immediately.
func NewWorkerQueue(h Handler, logger *slog.Logger, opts ...Option) *WorkerQueue {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{workers: 1, queueSize: 64}
	for _, opt := range opts {
		opt(&o)
	}
	q := &WorkerQueue{
		handler: h,
		opts:    o,
		logger:  logger,
		jobs:    make(chan Job, o.queueSize),
	}
	for i := 0; i < o.workers; i++ {
		q.wg.Add(1)
		go q.work(i + 1)
	}
	logger.Info("queue.started", "workers", o.workers, "queue_size", o.queueSize)
	return q
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *WorkerQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain, or for ctx.
func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.logger.Info("queue.stopped")
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown_timeout", "error", ctx.Err())
	}
}

func (q *WorkerQueue) work(id int) {
	defer q.wg.Done()
	q.logger.Debug("worker started", "worker_id", id)
	for job := range q.jobs {
		ctx := context.Background()
		cancel := func() {}
		if q.opts.processTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, q.opts.processTimeout)
		}
		start := time.Now()
		err := q.handler(ctx, job)
		cancel()
		if err != nil {
			q.logger.Error("queue.job.failed", "worker_id", id, "path", job.Path, "error", err)
			continue
		}
		q.logger.Debug("queue.job.done", "worker_id", id, "path", job.Path,
			"wait_ms", start.Sub(job.SubmittedAt).Milliseconds(),
			"elapsed_ms", time.Since(start).Milliseconds())
	}
	q.logger.Debug("worker stopped", "worker_id", id)
}
