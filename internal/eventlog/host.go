package eventlog

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/keywordping/keywordping-go/internal/tailer"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// FileHost is a keywordping.Host fed from an event log. Messages are
// delivered to subscribers synchronously and in log order.
type FileHost struct {
	dir     *Directory
	log     *slog.Logger
	notify  func(*keywordping.Message) error
	onError func(error)

	mu       sync.Mutex
	handlers map[int]func(*keywordping.Message)
	order    []int
	nextID   int
}

var _ keywordping.Host = (*FileHost)(nil)

// HostOption configures a FileHost.
type HostOption func(*FileHost)

// WithLogger sets a logger for debug output.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *FileHost) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithNotify sets the function that receives messages the engine flags.
func WithNotify(fn func(*keywordping.Message) error) HostOption {
	return func(h *FileHost) {
		h.notify = fn
	}
}

// WithErrorHandler sets the function that receives per-line decode and
// read errors. Without one, they are logged and skipped.
func WithErrorHandler(fn func(error)) HostOption {
	return func(h *FileHost) {
		h.onError = fn
	}
}

// NewFileHost returns a host that teaches dir about every event it reads.
func NewFileHost(dir *Directory, opts ...HostOption) *FileHost {
	h := &FileHost{
		dir:      dir,
		log:      discardLogger,
		handlers: make(map[int]func(*keywordping.Message)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Directory returns the host's directory.
func (h *FileHost) Directory() *Directory {
	return h.dir
}

// OnMessageArrived implements keywordping.Host.
func (h *FileHost) OnMessageArrived(fn func(*keywordping.Message)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.handlers[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.handlers, id)
		})
	}
}

// FlagAsMentioned implements keywordping.Host.
func (h *FileHost) FlagAsMentioned(msg *keywordping.Message) error {
	if h.notify == nil {
		return nil
	}
	return h.notify(msg)
}

// Dispatch feeds one event to the directory and, for MESSAGE_CREATE,
// delivers the message to every subscriber.
func (h *FileHost) Dispatch(ev *Event) {
	if ev == nil {
		return
	}
	h.dir.Observe(ev)

	msg := ev.ToMessage()
	if msg == nil {
		return
	}
	for _, fn := range h.subscribers() {
		fn(msg)
	}
}

func (h *FileHost) subscribers() []func(*keywordping.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fns := make([]func(*keywordping.Message), 0, len(h.handlers))
	for _, id := range h.order {
		if fn, ok := h.handlers[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// DispatchLine decodes and dispatches one line. Decode errors are reported
// through the error handler.
func (h *FileHost) DispatchLine(lineNo int, line []byte) {
	ev, err := Decode(line)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Line = lineNo
		}
		h.reportError(err)
		return
	}
	h.Dispatch(ev)
}

// ReadFrom dispatches every event in r until EOF or ctx is cancelled.
func (h *FileHost) ReadFrom(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes+1)

	lineNo := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		h.DispatchLine(lineNo, sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &DecodeError{Line: lineNo + 1, Err: ErrLineTooLong}
		}
		return err
	}
	return nil
}

// Follow tails the event log at path and dispatches each line as it is
// written. It returns nil when the tailer reaches the end of a file it is
// not following, or ctx.Err() on cancellation.
func (h *FileHost) Follow(ctx context.Context, path string, cfg tailer.Config) error {
	t, err := tailer.New(ctx, path, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = t.Stop() }()
	h.log.Debug("following event log", "path", path, "from_start", cfg.FromStart)

	lineNo := 0
	lines, errs := t.Lines(), t.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return ctx.Err()
			}
			lineNo++
			h.DispatchLine(lineNo, []byte(line))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			h.reportError(err)
		}
	}
}

func (h *FileHost) reportError(err error) {
	if h.onError != nil {
		h.onError(err)
		return
	}
	h.log.Warn("skipping event", "error", err)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
