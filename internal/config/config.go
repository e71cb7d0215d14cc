// Package config resolves where the catalog API lives.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	EnvAPIBase  = "SHOPDESK_API_BASE"
	EnvAPIPath  = "SHOPDESK_API_PATH"
	EnvTimeout  = "SHOPDESK_TIMEOUT"
	EnvPassword = "SHOPDESK_PASSWORD"

	DefaultTimeout = 30 * time.Second
)

var ErrMissingAPI = errors.New("catalog API location is not configured")

// Config holds the catalog API location
type Config struct {
	APIBase string
	APIPath string
	Timeout time.Duration
}

// FromEnv reads the configuration from the environment. A malformed timeout
// is an error rather than silently falling back.
func FromEnv() (Config, error) {
	cfg := Config{
		APIBase: os.Getenv(EnvAPIBase),
		APIPath: os.Getenv(EnvAPIPath),
		Timeout: DefaultTimeout,
	}

	if raw := os.Getenv(EnvTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvTimeout, raw, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Validate reports missing settings
func (c Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("%w: set --api-base or %s", ErrMissingAPI, EnvAPIBase)
	}
	if c.APIPath == "" {
		return fmt.Errorf("%w: set --api-path or %s", ErrMissingAPI, EnvAPIPath)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
