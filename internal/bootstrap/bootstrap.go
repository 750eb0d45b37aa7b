// Package bootstrap turns a loaded config into the adapters the service
// runs on. It is shared by the server and the operator commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/convention/internal/adapters/mq/worker"
	"github.com/okian/convention/internal/adapters/notify"
	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/adapters/repository/postgres"
	"github.com/okian/convention/internal/adapters/repository/sqlite"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/config"
	"github.com/okian/convention/internal/domain/content"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
)

// ErrUnknownDriver is returned for a driver the config validation missed.
var ErrUnknownDriver = errors.New("unknown driver")

// Notifier delivers notifications and releases its transport on Close.
type Notifier interface {
	worker.Notifier
	Close() error
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// OpenStore opens the configured store. SQL stores are migrated when
// migrate is true.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool) (repository.Store, error) {
	var (
		store repository.Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repository.NewMemStore(), nil
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); cfg.SQLitePath != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("bootstrap: sqlite dir: %w", err)
			}
		}
		store, err = sqlite.Open(ctx, cfg.SQLitePath)
	case config.StorePostgres:
		store, err = postgres.Open(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("bootstrap: store %q: %w", cfg.StoreDriver, ErrUnknownDriver)
	}
	if err != nil {
		return nil, err
	}
	if m, ok := store.(migrator); ok && migrate {
		if err := m.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

// Migrate applies the schema of the configured SQL store. The memory store
// needs no migration.
func Migrate(ctx context.Context, cfg *config.Config) error {
	store, err := OpenStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	return store.Close()
}

// OpenStorage returns the configured blob storage.
func OpenStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageFS:
		fs, err := storage.NewFS(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	return nil, fmt.Errorf("bootstrap: storage %q: %w", cfg.StorageDriver, ErrUnknownDriver)
}

// NewNotifier returns the configured notification transport.
func NewNotifier(cfg *config.Config, l logger.Logger) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierLog:
		return notify.NewLogNotifier(l), nil
	case config.NotifierKafka:
		return notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	}
	return nil, fmt.Errorf("bootstrap: notifier %q: %w", cfg.Notifier, ErrUnknownDriver)
}

// Site returns the landing page copy with the configured schedule and
// pitch deadline applied.
func Site(cfg *config.Config) content.Site {
	days := make([]content.Day, 0, len(cfg.Schedule))
	for _, d := range cfg.Schedule {
		day := content.Day{Label: d.Label, Date: d.Date}
		for _, s := range d.Sessions {
			day.Sessions = append(day.Sessions, content.Session{Time: s.Time, Title: s.Title, Detail: s.Detail})
		}
		days = append(days, day)
	}
	site := content.Default().WithSchedule(days)
	if cfg.PitchDeadline != "" {
		site.PitchDeadline = cfg.PitchDeadline
	}
	if cfg.MaxVideoMB > 0 {
		site.VideoLimit = validation.SizeLabel(int64(cfg.MaxVideoMB) << 20)
	}
	return site
}
