// Package queue buffers notifications between request handlers and the
// delivery workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/pkg/metrics"
)

const defaultQueueCapacity = 1_000

// Notification is the payload flowing through the queue.
type Notification = model.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds n to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, n Notification) bool

	// Dequeue returns the channel consumers read from. It is closed, after
	// the backlog drains, once the queue is closed.
	Dequeue(ctx context.Context) <-chan Notification

	// Len returns the current backlog.
	Len(ctx context.Context) int

	// Close stops accepting notifications.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Notification
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Notification, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue never blocks.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.items <- n:
		metrics.UpdateQueueSize(len(q.items))
		return true
	default:
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Notification {
	return q.items
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	return size
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Capacity returns the configured bound.
func (q *InMemoryQueue) Capacity() int { return q.capacity }
