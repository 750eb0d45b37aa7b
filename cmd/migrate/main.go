// Command migrate applies the schema of the configured SQL store.
package main

import (
	"context"
	"os"

	"github.com/okian/convention/internal/bootstrap"
	"github.com/okian/convention/internal/config"
	"github.com/okian/convention/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Get().Named("migrate")

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if cfg.StoreDriver == config.StoreMemory {
		log.Info(ctx, "memory store needs no migration")
		return
	}
	if err := bootstrap.Migrate(ctx, cfg); err != nil {
		log.Error(ctx, "migration failed", logger.String("store", cfg.StoreDriver), logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "schema applied", logger.String("store", cfg.StoreDriver))
}
