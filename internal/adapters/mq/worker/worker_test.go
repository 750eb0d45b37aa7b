package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/convention/internal/adapters/mq/queue"
	worker "github.com/okian/convention/internal/adapters/mq/worker"
	"github.com/okian/convention/internal/domain/model"
	logging "github.com/okian/convention/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type recordingNotifier struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]error
	delay time.Duration
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fail: map[string]error{}}
}

func (r *recordingNotifier) Notify(ctx context.Context, n model.Notification) error {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[n.ID]; err != nil {
		return err
	}
	r.seen = append(r.seen, n.ID)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestWorker(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a worker on a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		n := newRecordingNotifier()
		w := worker.NewInMemoryWorker(q, n, worker.WithName("test"), worker.WithTimeout(time.Second))

		convey.Convey("When notifications are queued and the queue closes", func() {
			ctx := context.Background()
			q.Enqueue(ctx, model.Notification{ID: "a", Kind: model.NotifyRegistrationSubmitted})
			q.Enqueue(ctx, model.Notification{ID: "b", Kind: model.NotifyPitchSubmitted})
			n.fail["b"] = errors.New("broker down")
			_ = q.Close()

			go w.Run(ctx)
			err := w.Shutdown(ctxWithTimeout(2 * time.Second))

			convey.Convey("Then the backlog is processed before the worker stops", func() {
				convey.So(err, convey.ShouldBeNil)
				delivered, failed := w.Processed()
				convey.So(delivered, convey.ShouldEqual, 1)
				convey.So(failed, convey.ShouldEqual, 1)
				convey.So(n.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker returns without the queue closing", func() {
				convey.So(w.Shutdown(ctxWithTimeout(time.Second)), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutdown is not given enough time", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)
			err := w.Shutdown(ctxWithTimeout(10 * time.Millisecond))

			convey.Convey("Then it reports the timeout", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a pool of three workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		n := newRecordingNotifier()
		p := worker.NewPool(3, q, n)
		p.Start(context.Background())

		convey.Convey("When fifty notifications are queued and the pool shuts down", func() {
			for i := 0; i < 50; i++ {
				q.Enqueue(context.Background(), model.Notification{ID: string(rune('A' + i)), Kind: model.NotifyRegistrationSubmitted})
			}
			err := p.Shutdown(ctxWithTimeout(5 * time.Second))

			convey.Convey("Then every notification is delivered", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Size(), convey.ShouldEqual, 3)
				convey.So(n.count(), convey.ShouldEqual, 50)
				delivered, failed := p.Stats()
				convey.So(delivered, convey.ShouldEqual, 50)
				convey.So(failed, convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool created with no workers", t, func() {
		p := worker.NewPool(0, queue.NewInMemoryQueue(), newRecordingNotifier())

		convey.Convey("Then it falls back to the default size", func() {
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}

func ctxWithTimeout(d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	time.AfterFunc(d+time.Second, cancel)
	return ctx
}
