// Package store persists keywordping settings and reports changes to them.
//
// Two backends are provided: FileStore keeps settings in a YAML or JSON
// file, SQLiteStore keeps them in a SQLite database. Open picks one from
// the file extension.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/keywordping/keywordping-go/internal/settingspath"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

const (
	// MaxFileSize is the largest settings file FileStore will read (1 MiB).
	MaxFileSize = 1 * 1024 * 1024

	// DefaultPollInterval is how often SQLiteStore checks for changes.
	DefaultPollInterval = time.Second

	// watchErrBuffer is the capacity of Watch error channels.
	watchErrBuffer = 16
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store loads, saves and watches one settings snapshot.
type Store interface {
	// Load returns the persisted settings. A store that has never been
	// saved returns empty settings.
	Load(ctx context.Context) (keywordping.Settings, error)
	// Save replaces the persisted settings.
	Save(ctx context.Context, s keywordping.Settings) error
	// Watch sends the current settings and then every change until ctx is
	// cancelled. Both channels are closed when watching ends.
	Watch(ctx context.Context) (<-chan keywordping.Settings, <-chan error, error)
	// Close releases the store's resources.
	Close() error
}

// Op names the store operation that failed.
type Op string

const (
	OpOpen  Op = "open"
	OpLoad  Op = "load"
	OpSave  Op = "save"
	OpWatch Op = "watch"
)

// Error describes a failed store operation.
type Error struct {
	Op   Op
	Path string // Base name of the settings file, if any
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// sanitizePathError strips the full path from an *os.PathError so errors
// shown to users do not expose the file system layout.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Option configures a store.
type Option func(*config)

type config struct {
	logger       *slog.Logger
	pollInterval time.Duration
}

func applyOptions(opts []Option) *config {
	cfg := &config{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger
	}
	if cfg.pollInterval <= 0 {
		cfg.pollInterval = DefaultPollInterval
	}
	return cfg
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithLogger sets a logger for debug output. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithPollInterval sets how often SQLiteStore polls for changes.
// Default: DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// Open returns the store for path: SQLiteStore for .db, .sqlite and
// .sqlite3 files, FileStore otherwise.
func Open(path string, opts ...Option) (Store, error) {
	if settingspath.IsSQLite(path) {
		return OpenSQLite(path, opts...)
	}
	return NewFileStore(path, opts...), nil
}

// Update loads the settings, applies edit and saves the result.
// It returns the saved settings.
func Update(ctx context.Context, st Store, edit func(keywordping.Settings) keywordping.Settings) (keywordping.Settings, error) {
	s, err := st.Load(ctx)
	if err != nil {
		return keywordping.Settings{}, err
	}
	s = edit(s)
	if err := st.Save(ctx, s); err != nil {
		return keywordping.Settings{}, err
	}
	return s, nil
}

// sendError sends err without blocking. Errors are dropped only when the
// buffer is full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}

// sendSettings delivers s unless ctx ends first.
func sendSettings(ctx context.Context, ch chan<- keywordping.Settings, s keywordping.Settings) bool {
	select {
	case ch <- s:
		return true
	case <-ctx.Done():
		return false
	}
}
