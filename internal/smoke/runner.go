package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/convention/pkg/logger"
)

// ErrFailures is returned when any step saw an unexpected response.
var ErrFailures = errors.New("smoke run had failures")

const healthPoll = 200 * time.Millisecond

// Run executes the smoke scenario against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("smoke")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg)

	log.Info(ctx, "starting convention smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("delegates", cfg.Delegates),
		logger.Int("workers", cfg.Workers),
		logger.Bool("admin", cfg.AdminToken != ""))

	if err := c.waitHealthy(ctx, healthPoll); err != nil {
		return stats, err
	}

	delegates := generateDelegates(cfg.Delegates)
	emails := make(map[string]bool, len(delegates))
	for _, d := range delegates {
		emails[d.email] = true
	}

	forEach(ctx, cfg.Workers, delegates, func(d delegate) {
		status, err := c.register(ctx, d)
		if err != nil || status != http.StatusCreated {
			atomic.AddInt64(&stats.RegisterFailed, 1)
			log.Warn(ctx, "registration failed", logger.String("name", d.fullName), logger.Int("status", status), logger.Error(err))
			return
		}
		atomic.AddInt64(&stats.Registered, 1)
		if cfg.Verbose {
			log.Info(ctx, "registered", logger.String("name", d.fullName), logger.String("email", d.email))
		}

		if status, _ := c.register(ctx, d); status == http.StatusConflict {
			atomic.AddInt64(&stats.DuplicatesBlocked, 1)
		} else {
			atomic.AddInt64(&stats.RegisterFailed, 1)
			log.Warn(ctx, "duplicate registration was not blocked", logger.String("name", d.fullName), logger.Int("status", status))
		}
	})
	log.Info(ctx, "registrations submitted",
		logger.Int64("registered", stats.Registered),
		logger.Int64("duplicatesBlocked", stats.DuplicatesBlocked),
		logger.Int64("failed", stats.RegisterFailed))

	visits := make([]int, cfg.Workers)
	var lastCount atomic.Int64
	forEach(ctx, cfg.Workers, visits, func(int) {
		counted, n, err := c.visit(ctx)
		if err != nil {
			log.Warn(ctx, "visit failed", logger.Error(err))
			return
		}
		if counted {
			atomic.AddInt64(&stats.VisitsCounted, 1)
		}
		for {
			cur := lastCount.Load()
			if n <= cur || lastCount.CompareAndSwap(cur, n) {
				break
			}
		}
	})
	stats.VisitorCount = lastCount.Load()

	if cfg.AdminToken != "" {
		if err := runPitches(ctx, c, emails, cfg.Workers, stats, log); err != nil {
			return finish(stats), err
		}
	} else {
		log.Info(ctx, "no admin token; skipping payment confirmation and pitches")
	}

	finish(stats)
	if cfg.ReportFile != "" {
		if err := writeReport(cfg.ReportFile, stats); err != nil {
			log.Warn(ctx, "failed to write report", logger.String("file", cfg.ReportFile), logger.Error(err))
		}
	}
	log.Info(ctx, "smoke run finished", logger.Duration("duration", stats.Duration), logger.Any("stats", stats))

	if stats.RegisterFailed > 0 || stats.PitchFailed > 0 {
		return stats, ErrFailures
	}
	return stats, nil
}

// runPitches confirms the run's registrations and submits one pitch per UID,
// then checks that a second pitch is refused.
func runPitches(ctx context.Context, c *client, emails map[string]bool, workers int, stats *Stats, log logger.Logger) error {
	pending, status, err := c.pendingRegistrations(ctx)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("list pending registrations: status %d: %w", status, errors.Join(err, ErrFailures))
	}
	var ids []string
	for _, r := range pending {
		if emails[r.Email] {
			ids = append(ids, r.ID)
		}
	}

	var (
		mu   sync.Mutex
		uids []string
	)
	forEach(ctx, workers, ids, func(id string) {
		reg, status, err := c.confirm(ctx, id)
		if err != nil || status != http.StatusOK || !reg.HasUID() {
			atomic.AddInt64(&stats.PitchFailed, 1)
			log.Warn(ctx, "confirm failed", logger.String("id", id), logger.Int("status", status), logger.Error(err))
			return
		}
		atomic.AddInt64(&stats.Confirmed, 1)
		mu.Lock()
		uids = append(uids, reg.TransactionID)
		mu.Unlock()
	})

	forEach(ctx, workers, uids, func(uid string) {
		if status, err := c.verify(ctx, uid); err != nil || status != http.StatusOK {
			atomic.AddInt64(&stats.PitchFailed, 1)
			log.Warn(ctx, "verify failed", logger.String("uid", uid), logger.Int("status", status), logger.Error(err))
			return
		}
		atomic.AddInt64(&stats.Verified, 1)

		if status, err := c.submitPitch(ctx, uid); err != nil || status != http.StatusCreated {
			atomic.AddInt64(&stats.PitchFailed, 1)
			log.Warn(ctx, "pitch failed", logger.String("uid", uid), logger.Int("status", status), logger.Error(err))
			return
		}
		atomic.AddInt64(&stats.PitchesAccepted, 1)

		if status, _ := c.submitPitch(ctx, uid); status == http.StatusConflict {
			atomic.AddInt64(&stats.PitchesBlocked, 1)
		} else {
			atomic.AddInt64(&stats.PitchFailed, 1)
			log.Warn(ctx, "second pitch was not blocked", logger.String("uid", uid), logger.Int("status", status))
		}
	})
	return nil
}

// forEach runs fn over items with a fixed number of workers.
func forEach[T any](ctx context.Context, workers int, items []T, fn func(T)) {
	if workers < 1 {
		workers = 1
	}
	ch := make(chan T, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range ch {
				if ctx.Err() != nil {
					continue
				}
				fn(item)
			}
		}()
	}
send:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break send
		case ch <- item:
		}
	}
	close(ch)
	wg.Wait()
}

func finish(stats *Stats) *Stats {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats
}
