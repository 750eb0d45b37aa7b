package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks a config that loaded but failed Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, env or unmarshal failure.
	ErrLoadConfig = errors.New("load config failed")
)

// invalid names the offending key so operators can find it in YAML or env.
func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, key, fmt.Sprintf(format, args...))
}
