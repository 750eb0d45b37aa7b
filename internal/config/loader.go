package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONV_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if CONV_CONFIG is set
//  3. env (prefix CONV_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CONV_STORE_DRIVER -> store_driver. Keys are flat so underscores are kept.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr", "must not be empty")
	case c.RegistrationFee < 0:
		return invalid("registration_fee", "must not be negative")
	case c.QueueSize <= 0 || c.WorkerCount <= 0 || c.DedupeSize <= 0:
		return invalid("queue_size/worker_count/dedupe_size", "must be positive")
	case c.MaxVideoMB <= 0 || c.MaxReceiptMB <= 0 || c.MaxUploadMB <= 0:
		return invalid("max_upload_mb/max_video_mb/max_receipt_mb", "must be positive")
	}

	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.PostgresURL == "" {
			return invalid("postgres_url", "required for the postgres store")
		}
	default:
		return invalid("store_driver", "unknown driver %q", c.StoreDriver)
	}

	switch c.StorageDriver {
	case StorageMemory:
	case StorageFS:
		if c.StorageDir == "" {
			return invalid("storage_dir", "required for the fs storage")
		}
	default:
		return invalid("storage_driver", "unknown driver %q", c.StorageDriver)
	}

	switch c.Notifier {
	case NotifierLog:
	case NotifierKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return invalid("kafka_brokers/kafka_topic", "required for the kafka notifier")
		}
	default:
		return invalid("notifier", "unknown notifier %q", c.Notifier)
	}

	if _, err := c.StartTime(); err != nil {
		return invalid("convention_start", "%v", err)
	}
	return nil
}

// splitList expands comma separated entries, as given by CONV_KAFKA_BROKERS.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
