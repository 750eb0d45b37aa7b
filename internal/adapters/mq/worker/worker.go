// Package worker delivers queued notifications.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/convention/internal/adapters/mq/queue"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/pkg/logger"
	"github.com/okian/convention/pkg/metrics"
)

const (
	defaultWorkerCount    = 2
	defaultNotifyTimeout  = 10 * time.Second
	poolShutdownTimeout   = 30 * time.Second
	notificationResultOK  = "delivered"
	notificationResultErr = "failed"
)

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Queue defines how workers receive notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Notification
}

// Worker processes notifications until its queue closes.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker reads from a Queue and hands each item to a Notifier.
type InMemoryWorker struct {
	queue    Queue
	notifier Notifier
	name     string
	timeout  time.Duration

	done chan struct{}

	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, notifier Notifier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		notifier: notifier,
		name:     "worker",
		timeout:  defaultNotifyTimeout,
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the queue until it is closed or ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-items:
			if !ok {
				return
			}
			if err := w.process(ctx, n); err != nil {
				w.logger.Error(ctx, "notification delivery failed",
					logger.String("worker", w.name),
					logger.String("kind", n.Kind),
					logger.String("subject", n.Subject),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown waits for Run to return. The queue must be closed first.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of delivered and failed notifications.
func (w *InMemoryWorker) Processed() (delivered, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

func (w *InMemoryWorker) process(ctx context.Context, n model.Notification) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() { metrics.RecordWorkerLatency(time.Since(start)) }()

	nctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.notifier.Notify(nctx, n); err != nil {
		w.failed.Add(1)
		metrics.RecordNotification(n.Kind, notificationResultErr, time.Since(start))
		metrics.RecordErrorByComponent("worker", "notify_error")
		return fmt.Errorf("notify %s %s: %w", n.Kind, n.ID, err)
	}
	w.processed.Add(1)
	metrics.RecordNotification(n.Kind, notificationResultOK, time.Since(start))
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	cancel  context.CancelFunc
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing q.
func NewPool(workerCount int, q Queue, notifier Notifier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		cancel:  func() {},
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, notifier, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker. Workers stop when the queue is closed or
// ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Stats sums delivered and failed notifications across workers.
func (p *Pool) Stats() (delivered, failed int64) {
	for _, w := range p.workers {
		d, f := w.Processed()
		delivered += d
		failed += f
	}
	return delivered, failed
}

// Shutdown closes the queue, lets workers drain the backlog and cancels
// whatever is still running when ctx (capped at 30s) expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	defer p.cancel()

	var timedOut bool
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool: %w", shutdownCtx.Err())
	}
	return nil
}
