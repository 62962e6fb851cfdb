package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/keywordping/keywordping-go/internal/safefile"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// reloadDelay coalesces the burst of events an editor produces when it
// saves a file.
const reloadDelay = 50 * time.Millisecond

// FileStore keeps settings in a YAML file, or a JSON file when the path
// ends in .json. Writes are atomic.
type FileStore struct {
	path string
	json bool
	log  *slog.Logger

	mu     sync.Mutex // serializes Save
	closed atomic.Bool
}

// NewFileStore returns a store for path. The file is created on the first
// Save.
func NewFileStore(path string, opts ...Option) *FileStore {
	cfg := applyOptions(opts)
	return &FileStore{
		path: filepath.Clean(path),
		json: strings.EqualFold(filepath.Ext(path), ".json"),
		log:  cfg.logger,
	}
}

// Path returns the settings file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the settings file. A missing or empty file yields empty
// settings.
func (fs *FileStore) Load(ctx context.Context) (keywordping.Settings, error) {
	if fs.closed.Load() {
		return keywordping.Settings{}, fs.wrap(OpLoad, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return keywordping.Settings{}, fs.wrap(OpLoad, err)
	}

	data, err := safefile.ReadLimited(fs.path, MaxFileSize)
	if errors.Is(err, os.ErrNotExist) {
		return keywordping.Settings{}, nil
	}
	if err != nil {
		return keywordping.Settings{}, fs.wrap(OpLoad, sanitizePathError(err))
	}

	s, err := fs.decode(data)
	if err != nil {
		return keywordping.Settings{}, fs.wrap(OpLoad, err)
	}
	return s, nil
}

// Save atomically replaces the settings file.
func (fs *FileStore) Save(ctx context.Context, s keywordping.Settings) error {
	if fs.closed.Load() {
		return fs.wrap(OpSave, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return fs.wrap(OpSave, err)
	}

	data, err := fs.encode(normalize(s))
	if err != nil {
		return fs.wrap(OpSave, err)
	}
	if len(data) > MaxFileSize {
		return fs.wrap(OpSave, fmt.Errorf("%w: %d bytes (max %d)", safefile.ErrTooLarge, len(data), MaxFileSize))
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := safefile.WriteAtomic(fs.path, data, 0o600); err != nil {
		return fs.wrap(OpSave, sanitizePathError(err))
	}
	fs.log.Debug("settings saved", "path", fs.path, "keywords", len(s.Keywords))
	return nil
}

// Watch sends the current settings, then a new snapshot each time the file
// changes on disk. Unreadable or malformed states are reported on the error
// channel and the previous snapshot stays in effect.
func (fs *FileStore) Watch(ctx context.Context) (<-chan keywordping.Settings, <-chan error, error) {
	if fs.closed.Load() {
		return nil, nil, fs.wrap(OpWatch, ErrClosed)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fs.wrap(OpWatch, sanitizePathError(err))
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fs.wrap(OpWatch, err)
	}
	// Watch the directory so atomic renames are seen.
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, nil, fs.wrap(OpWatch, sanitizePathError(err))
	}

	out := make(chan keywordping.Settings)
	errCh := make(chan error, watchErrBuffer)
	go fs.watch(ctx, w, out, errCh)
	return out, errCh, nil
}

func (fs *FileStore) watch(ctx context.Context, w *fsnotify.Watcher, out chan<- keywordping.Settings, errCh chan<- error) {
	defer close(errCh)
	defer close(out)
	defer w.Close()

	var (
		last    *keywordping.Settings
		pending <-chan time.Time
	)

	reload := func() bool {
		s, err := fs.Load(ctx)
		if err != nil {
			sendError(ctx, errCh, err)
			return true
		}
		if last != nil && reflect.DeepEqual(normalize(*last), normalize(s)) {
			return true
		}
		last = &s
		fs.log.Debug("settings changed", "path", fs.path)
		return sendSettings(ctx, out, s.Clone())
	}

	if !reload() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fs.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = time.After(reloadDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			sendError(ctx, errCh, fs.wrap(OpWatch, err))
		case <-pending:
			pending = nil
			if !reload() {
				return
			}
		}
	}
}

// Close marks the store closed. Running watches end with their context.
func (fs *FileStore) Close() error {
	fs.closed.Store(true)
	return nil
}

func (fs *FileStore) decode(data []byte) (keywordping.Settings, error) {
	var s keywordping.Settings
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if fs.json {
		if err := json.Unmarshal(data, &s); err != nil {
			return keywordping.Settings{}, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return s, nil
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return keywordping.Settings{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return s, nil
}

func (fs *FileStore) encode(s keywordping.Settings) ([]byte, error) {
	if fs.json {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (fs *FileStore) wrap(op Op, err error) error {
	return &Error{Op: op, Path: filepath.Base(fs.path), Err: err}
}

// normalize replaces nil lists with empty ones so both formats write "[]".
func normalize(s keywordping.Settings) keywordping.Settings {
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	if s.WhitelistedUsers == nil {
		s.WhitelistedUsers = []string{}
	}
	if len(s.Guilds) == 0 {
		s.Guilds = nil
	}
	return s
}
