package server

import (
	"errors"
	"time"
)

const (
	DefaultAddr            = ":8000"
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds everything a Server needs to run.
type Config struct {
	Addr    string // listen address, e.g. ":8000"
	Root    string // directory served at /
	LogPath string // optional simulation log exposed under /api/groups and /report

	ShutdownTimeout time.Duration
	Debounce        time.Duration // file watcher debounce, 0 = watch.DefaultDebounce
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Addr == "" {
		return nil, errors.New("Addr is a required configuration field and cannot be empty")
	}
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &cfg, nil
}
