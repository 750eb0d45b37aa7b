package bootstrap_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/convention/internal/adapters/notify"
	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/bootstrap"
	"github.com/okian/convention/internal/config"
	"github.com/okian/convention/internal/domain/content"
	"github.com/okian/convention/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOpenStore(t *testing.T) {
	Convey("Given a config", t, func() {
		ctx := context.Background()
		cfg := config.New()

		Convey("When the memory store is selected", func() {
			cfg.StoreDriver = config.StoreMemory
			store, err := bootstrap.OpenStore(ctx, cfg, true)

			Convey("Then a MemStore is returned", func() {
				So(err, ShouldBeNil)
				_, ok := store.(*repository.MemStore)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When sqlite is selected under a missing directory", func() {
			cfg.StoreDriver = config.StoreSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "convention.db")
			store, err := bootstrap.OpenStore(ctx, cfg, true)

			Convey("Then the directory is created and the schema applied", func() {
				So(err, ShouldBeNil)
				defer store.Close()
				n, err := store.CountRegistrations(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})

			Convey("Then migrating again is harmless", func() {
				So(err, ShouldBeNil)
				So(store.Close(), ShouldBeNil)
				So(bootstrap.Migrate(ctx, cfg), ShouldBeNil)
			})
		})

		Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "mongo"
			_, err := bootstrap.OpenStore(ctx, cfg, false)
			So(errors.Is(err, bootstrap.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

func TestOpenStorage(t *testing.T) {
	Convey("Given storage drivers", t, func() {
		cfg := config.New()

		cfg.StorageDriver = config.StorageMemory
		mem, err := bootstrap.OpenStorage(cfg)
		So(err, ShouldBeNil)
		_, ok := mem.(*storage.Memory)
		So(ok, ShouldBeTrue)

		cfg.StorageDriver = config.StorageFS
		cfg.StorageDir = t.TempDir()
		fs, err := bootstrap.OpenStorage(cfg)
		So(err, ShouldBeNil)
		_, ok = fs.(*storage.FS)
		So(ok, ShouldBeTrue)

		cfg.StorageDriver = "s3"
		_, err = bootstrap.OpenStorage(cfg)
		So(errors.Is(err, bootstrap.ErrUnknownDriver), ShouldBeTrue)
	})
}

func TestNewNotifier(t *testing.T) {
	Convey("Given notifier kinds", t, func() {
		cfg := config.New()

		n, err := bootstrap.NewNotifier(cfg, logger.Get())
		So(err, ShouldBeNil)
		_, ok := n.(*notify.LogNotifier)
		So(ok, ShouldBeTrue)

		cfg.Notifier = config.NotifierKafka
		n, err = bootstrap.NewNotifier(cfg, logger.Get())
		So(err, ShouldBeNil)
		_, ok = n.(*notify.KafkaNotifier)
		So(ok, ShouldBeTrue)
		So(n.Close(), ShouldBeNil)

		cfg.Notifier = "smtp"
		_, err = bootstrap.NewNotifier(cfg, logger.Get())
		So(errors.Is(err, bootstrap.ErrUnknownDriver), ShouldBeTrue)
	})
}

func TestSite(t *testing.T) {
	Convey("Given a configured schedule and deadline", t, func() {
		cfg := config.New()
		cfg.PitchDeadline = "20th March"
		cfg.MaxVideoMB = 80
		cfg.Schedule = []config.ScheduleDay{
			{Label: "Day 1", Date: "2026-04-02", Sessions: []config.ScheduleSession{{Time: "09:00", Title: "Arrival"}}},
		}
		site := bootstrap.Site(cfg)

		Convey("Then they replace the defaults", func() {
			So(site.PitchDeadline, ShouldEqual, "20th March")
			So(site.VideoLimit, ShouldEqual, "80MB")
			So(site.Schedule, ShouldHaveLength, 1)
			So(site.Schedule[0].Sessions[0].Title, ShouldEqual, "Arrival")
		})

		Convey("Then an empty schedule keeps the default tabs", func() {
			cfg.Schedule = nil
			So(bootstrap.Site(cfg).Schedule, ShouldHaveLength, len(content.Default().Schedule))
		})
	})
}
