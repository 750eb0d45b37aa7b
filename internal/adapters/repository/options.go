package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}
