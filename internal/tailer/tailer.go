// Package tailer follows a growing line-oriented file.
package tailer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
	"gopkg.in/tomb.v1"
)

// errBuffer is the capacity of the Errors channel.
const errBuffer = 16

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the existing content before following.
	// When false, only lines appended after New are delivered.
	FromStart bool
	// Follow keeps reading after EOF. When false the Lines channel closes
	// at the end of the file.
	Follow bool
	// ReOpen reopens the file when it is truncated, rotated or recreated.
	ReOpen bool
	// Poll uses stat polling instead of inotify.
	Poll bool
	// MustExist fails New if the file is missing.
	MustExist bool
}

// DefaultConfig follows a file from its current end, reopening it on
// rotation.
func DefaultConfig() Config {
	return Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
	}
}

// Tailer delivers the lines of a file on a channel.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New starts following path. The Tailer stops when ctx is cancelled or
// Stop is called; both channels are then closed.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	tc := tail.Config{
		Follow:    cfg.Follow,
		ReOpen:    cfg.ReOpen && cfg.Follow,
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Logger:    tail.DiscardingLogger,
	}
	if !cfg.FromStart {
		tc.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, errBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the channel of lines, without line terminators.
func (tl *Tailer) Lines() <-chan string {
	return tl.lines
}

// Errors returns the channel of read errors.
func (tl *Tailer) Errors() <-chan error {
	return tl.errs
}

// Done is closed once the Tailer has stopped.
func (tl *Tailer) Done() <-chan struct{} {
	return tl.done
}

// Stop stops following the file and waits for delivery to end.
// Safe to call multiple times.
func (tl *Tailer) Stop() error {
	tl.stopOnce.Do(func() {
		tl.cancel()
		tl.stopErr = tl.t.Stop()
		<-tl.done
		tl.t.Cleanup()
	})
	return tl.stopErr
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.errs)
	defer close(tl.lines)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				// The tail's tomb may not be settled when Lines closes.
				if err := tl.t.Err(); err != nil && !errors.Is(err, tomb.ErrStillAlive) {
					tl.sendError(ctx, err)
				}
				return
			}
			if line.Err != nil {
				tl.sendError(ctx, line.Err)
				continue
			}
			select {
			case tl.lines <- strings.TrimSuffix(line.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (tl *Tailer) sendError(ctx context.Context, err error) {
	select {
	case tl.errs <- err:
	case <-ctx.Done():
	default:
	}
}
