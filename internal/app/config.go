package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // scenario .hcl file or directory

	LogFormat string
	LogLevel  string

	// Ticks overrides the scenario's max_ticks when positive.
	Ticks int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.Ticks < 0 {
		return nil, errors.New("Ticks cannot be negative")
	}

	return &cfg, nil
}
