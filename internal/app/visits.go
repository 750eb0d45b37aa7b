package service

import (
	"context"

	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/pkg/logger"
	"github.com/okian/convention/pkg/metrics"
)

// TrackVisit counts session once and returns the counter value. A failed
// increment leaves the session uncounted so a later visit retries.
func (s *Service) TrackVisit(ctx context.Context, session string) (bool, int64, error) {
	if session == "" || s.visits.SeenAndRecord(ctx, session) {
		n, err := s.VisitorCount(ctx)
		return false, n, err
	}

	n, err := s.store.IncrementCounter(ctx, repository.PageViewsCounter)
	if err != nil {
		s.visits.Unrecord(ctx, session)
		s.logger.Warn(ctx, "page view not recorded", logger.Error(err))
		return false, 0, stepErr("", ErrSave, err)
	}
	metrics.RecordPageView()
	metrics.UpdateVisitorCount(n)
	return true, n, nil
}

// VisitorCount reads the page view counter.
func (s *Service) VisitorCount(ctx context.Context) (int64, error) {
	n, err := s.store.Counter(ctx, repository.PageViewsCounter)
	if err != nil {
		return 0, stepErr("", ErrLookup, err)
	}
	return n, nil
}
