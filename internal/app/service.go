// Package service implements the convention site's use cases on top of the
// store, blob storage and notification queue.
package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/convention/internal/adapters/mq/queue"
	workerpool "github.com/okian/convention/internal/adapters/mq/worker"
	"github.com/okian/convention/internal/adapters/notify"
	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/domain/content"
	"github.com/okian/convention/internal/domain/countdown"
	"github.com/okian/convention/internal/domain/dedupe"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
	"github.com/okian/convention/pkg/metrics"
)

const (
	defaultRegistrationFee = 13_000
	defaultMaxReceipt      = 10 << 20
	maxUIDAttempts         = 10
)

// Service implements the API and site dependencies.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	blobs    storage.Storage
	notifier workerpool.Notifier

	claims     dedupe.Deduper
	visits     dedupe.Deduper
	queue      *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int
	fee         int64
	maxReceipt  int64
	maxVideo    int64
	start       time.Time
	site        content.Site
	baseURL     string
	now         func() time.Time
	nextUID     func() (string, error)

	started bool
	logger  logger.Logger
}

// New constructs a Service over store and blobs.
func New(store repository.Store, blobs storage.Storage, opts ...Option) *Service {
	s := &Service{
		store:       store,
		blobs:       blobs,
		workerCount: 2,
		queueSize:   1_000,
		dedupeSize:  50_000,
		fee:         defaultRegistrationFee,
		maxReceipt:  defaultMaxReceipt,
		maxVideo:    validation.MaxVideoBytes,
		start:       time.Date(2026, time.April, 2, 9, 0, 0, 0, time.FixedZone("WAT", 3600)),
		site:        content.Default(),
		now:         time.Now,
		nextUID:     randomUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(nil)
	}

	s.claims = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.visits = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	return s
}

// Start launches the notification workers. They keep running after ctx is
// cancelled so that Stop can drain the backlog; only Stop's deadline cuts
// delivery short.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.notifier)
	s.workerPool.Start(context.WithoutCancel(ctx))
	s.started = true

	s.logger.Info(ctx, "convention service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending notifications. Notifications enqueued afterwards are
// dropped.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		_ = s.queue.Close()
		return nil
	}
	s.logger.Info(ctx, "stopping convention service...")
	err := s.workerPool.Shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "convention service stopped")
	return err
}

// Countdown returns the time left until the convention starts.
func (s *Service) Countdown() countdown.Remaining {
	return countdown.Until(s.start, s.now())
}

// Site returns the landing page copy.
func (s *Service) Site() content.Site { return s.site }

// Schedule returns the schedule tabs.
func (s *Service) Schedule() []content.Day { return s.site.Schedule }

// Stats is a snapshot for monitoring.
type Stats struct {
	Started       bool  `json:"started"`
	Registrations int64 `json:"registrations"`
	Pitches       int64 `json:"pitches"`
	Visitors      int64 `json:"visitors"`
	QueueLength   int   `json:"queueLength"`
	QueueCapacity int   `json:"queueCapacity"`
	Workers       int   `json:"workers"`
	Delivered     int64 `json:"notificationsDelivered"`
	Failed        int64 `json:"notificationsFailed"`
	Claims        int64 `json:"activeClaims"`
	Sessions      int64 `json:"trackedSessions"`
}

// GetStats returns service statistics. Store counts that fail to load are
// reported as zero.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	started, pool := s.started, s.workerPool
	s.mu.RUnlock()

	st := Stats{
		Started:       started,
		QueueLength:   s.queue.Len(ctx),
		QueueCapacity: s.queue.Capacity(),
		Claims:        s.claims.Size(),
		Sessions:      s.visits.Size(),
	}
	if pool != nil {
		st.Workers = pool.Size()
		st.Delivered, st.Failed = pool.Stats()
	}

	var err error
	if st.Registrations, err = s.store.CountRegistrations(ctx); err != nil {
		s.logger.Warn(ctx, "count registrations failed", logger.Error(err))
	}
	if st.Pitches, err = s.store.CountPitches(ctx); err != nil {
		s.logger.Warn(ctx, "count pitches failed", logger.Error(err))
	}
	if st.Visitors, err = s.store.Counter(ctx, repository.PageViewsCounter); err != nil {
		s.logger.Warn(ctx, "read visitor counter failed", logger.Error(err))
	}

	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateVisitorCount(st.Visitors)
	return st
}

// notify enqueues a notification without blocking. A full queue is logged
// and never fails the caller.
func (s *Service) notify(ctx context.Context, kind, subject, email string, data map[string]string) {
	n := model.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		Email:     email,
		Data:      data,
		CreatedAt: s.now().UTC(),
	}
	if !s.queue.Enqueue(ctx, n) {
		s.logger.Warn(ctx, "notification dropped",
			logger.String("kind", kind),
			logger.String("subject", subject),
		)
	}
}

// fileURL is the admin download link for a stored object.
func (s *Service) fileURL(obj storage.Object) string {
	return s.baseURL + "/api/admin/files/" + obj.Path()
}

// body returns the upload's reader, or an empty one.
func body(u *model.Upload) io.Reader {
	if u.Body == nil {
		return bytes.NewReader(nil)
	}
	return u.Body
}

// randomUID returns six uniformly random digits; leading zeros are kept.
func randomUID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate uid: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
