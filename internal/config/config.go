// Package config loads irtcat configuration from defaults, an optional YAML
// file and IRTCAT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/logging"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig   `koanf:"server"`
	Log       logging.Config `koanf:"log"`
	Store     StoreConfig    `koanf:"store"`
	Estimator irt.Policy     `koanf:"estimator"`
}

// ServerConfig configures the HTTP scoring server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// BodyLimit caps request bodies, echo syntax ("1M", "512K").
	BodyLimit string `koanf:"body_limit"`
}

// StoreConfig configures the scoring event log.
type StoreConfig struct {
	Enabled bool `koanf:"enabled"`
	// DSN is a SQLite path or a postgres:// URL. Empty means the default
	// SQLite file under the XDG data directory.
	DSN string `koanf:"dsn"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "1M",
		},
		Log:       logging.DefaultConfig(),
		Store:     StoreConfig{Enabled: true},
		Estimator: irt.DefaultPolicy(),
	}
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks every section and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must not be negative"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if err := c.Estimator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("estimator: %w", err))
	}
	return errors.Join(errs...)
}
