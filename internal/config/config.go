package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dfryer1193/camroll/shared/db/sqlite"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            int           `env:"CAMROLL_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// Background inserts
	InsertRetries       uint64        `env:"INSERT_RETRIES" envDefault:"3"`
	InsertRetryInterval time.Duration `env:"INSERT_RETRY_INTERVAL" envDefault:"100ms"`

	SQLite sqlite.SQLiteConfig
}

// Load reads the given .env files, if they exist, and then the environment.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.InsertRetryInterval < 0 {
		return fmt.Errorf("insert retry interval cannot be negative, got %s", c.InsertRetryInterval)
	}
	return nil
}
