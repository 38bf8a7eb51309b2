// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every command.
type Config struct {
	DSN              string        `env:"AUTOCLASS_DSN"`
	Driver           string        `env:"AUTOCLASS_DRIVER" envDefault:"snowflake"`
	HistoryDB        string        `env:"AUTOCLASS_HISTORY_DB"`
	LogLevel         string        `env:"AUTOCLASS_LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"AUTOCLASS_LOG_FORMAT" envDefault:"console"`
	Addr             string        `env:"AUTOCLASS_ADDR" envDefault:":8080"`
	StatementTimeout time.Duration `env:"AUTOCLASS_STATEMENT_TIMEOUT" envDefault:"2m"`
}

// ErrMissingDSN is returned by RequireDSN when no connection string is set.
var ErrMissingDSN = errors.New("no connection string: set AUTOCLASS_DSN or --dsn")

// Load reads the environment and fills in defaults that depend on the host.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HistoryDB == "" {
		home, _ := os.UserHomeDir()
		cfg.HistoryDB = filepath.Join(home, ".autoclass", "history.db")
	}
	return cfg, nil
}

// RequireDSN fails when the commands that talk to the platform cannot connect.
func (c Config) RequireDSN() error {
	if c.DSN == "" {
		return ErrMissingDSN
	}
	return nil
}
