package service

import (
	"time"

	"github.com/okian/convention/internal/adapters/mq/worker"
	"github.com/okian/convention/internal/domain/content"
	"github.com/okian/convention/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the submission claim and visit caches.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier sets where queued notifications are delivered.
func WithNotifier(n worker.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRegistrationFee sets the amount recorded on each registration.
func WithRegistrationFee(fee int64) Option {
	return func(s *Service) {
		if fee >= 0 {
			s.fee = fee
		}
	}
}

// WithUploadLimits caps receipt and video sizes in bytes.
func WithUploadLimits(receipt, video int64) Option {
	return func(s *Service) {
		if receipt > 0 {
			s.maxReceipt = receipt
		}
		if video > 0 {
			s.maxVideo = video
		}
	}
}

// WithConventionStart sets the countdown target.
func WithConventionStart(t time.Time) Option {
	return func(s *Service) {
		if !t.IsZero() {
			s.start = t
		}
	}
}

// WithSite replaces the landing page copy.
func WithSite(site content.Site) Option {
	return func(s *Service) { s.site = site }
}

// WithPublicBaseURL prefixes stored file links.
func WithPublicBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUIDSource replaces the random delegate UID generator.
func WithUIDSource(next func() (string, error)) Option {
	return func(s *Service) {
		if next != nil {
			s.nextUID = next
		}
	}
}
