package keywordping

import (
	"io"
	"log/slog"
	"time"

	"github.com/keywordping/keywordping-go/pkg/keywordping/keyword"
)

// Option configures an Engine using the functional options pattern.
type Option func(*engineConfig)

type engineConfig struct {
	logger       *slog.Logger
	matchTimeout time.Duration
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		matchTimeout: keyword.DefaultMatchTimeout,
	}
}

func applyEngineOptions(opts []Option) *engineConfig {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithLogger sets a logger for debug and warning output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMatchTimeout bounds a single keyword match.
// Default: keyword.DefaultMatchTimeout. A non-positive value disables it.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		c.matchTimeout = d
	}
}
