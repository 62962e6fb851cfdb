package keywordping

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/keywordping/keywordping-go/pkg/keywordping/keyword"
)

// ErrNilDirectory is returned by NewEngine when no Directory is given.
var ErrNilDirectory = errors.New("keywordping: directory is nil")

// Engine evaluates messages against the current settings snapshot.
//
// Settings are swapped atomically by Apply; Evaluate and HandleMessage
// always see one complete snapshot. Engine is safe for concurrent use.
type Engine struct {
	dir         Directory
	log         *slog.Logger
	compileOpts []keyword.Option

	state atomic.Pointer[snapshot]
}

// snapshot is a settings value together with everything derived from it.
type snapshot struct {
	settings Settings
	patterns []*keyword.Pattern
	vip      []string
}

// NewEngine creates an Engine with empty settings.
func NewEngine(dir Directory, opts ...Option) (*Engine, error) {
	if dir == nil {
		return nil, ErrNilDirectory
	}
	cfg := applyEngineOptions(opts)

	logger := cfg.logger
	if logger == nil {
		logger = discardLogger
	}

	e := &Engine{
		dir:         dir,
		log:         logger,
		compileOpts: []keyword.Option{keyword.WithMatchTimeout(cfg.matchTimeout)},
	}
	e.state.Store(&snapshot{})
	return e, nil
}

// Apply replaces the settings snapshot and recompiles the full keyword list.
// Blank and invalid keywords are dropped.
func (e *Engine) Apply(s Settings) {
	s = s.Clone()

	patterns := make([]*keyword.Pattern, 0, len(s.Keywords))
	for i, raw := range s.Keywords {
		p, err := keyword.Compile(raw, e.compileOpts...)
		if err != nil {
			if !errors.Is(err, keyword.ErrEmptyKeyword) {
				e.log.Warn("dropping invalid keyword", "index", i, "keyword", raw, "error", err)
			}
			continue
		}
		patterns = append(patterns, p)
	}

	next := &snapshot{
		settings: s,
		patterns: patterns,
		vip:      NonBlank(s.WhitelistedUsers),
	}
	e.state.Store(next)

	e.log.Debug("settings applied",
		"keywords", len(next.patterns),
		"vip", len(next.vip),
		"disabled_guilds", len(s.DisabledGuilds()),
	)
}

// Run applies every snapshot received on updates until the channel is
// closed or ctx is cancelled. It returns ctx.Err() on cancellation and nil
// when updates is closed.
func (e *Engine) Run(ctx context.Context, updates <-chan Settings) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-updates:
			if !ok {
				return nil
			}
			e.Apply(s)
		}
	}
}

// Settings returns a copy of the current settings snapshot.
func (e *Engine) Settings() Settings {
	return e.state.Load().settings.Clone()
}

// Patterns returns the compiled keyword list of the current snapshot.
func (e *Engine) Patterns() []*keyword.Pattern {
	return append([]*keyword.Pattern(nil), e.state.Load().patterns...)
}

// HandleMessage evaluates msg and applies the mention side effect.
//
// A missing msg.GuildID is filled from the channel's guild first. On a
// match, the current user is added to msg.Mentions and msg.Mentioned is
// set, unless the user is already mentioned. The returned bool reports
// whether a new mention was added.
func (e *Engine) HandleMessage(msg *Message) (Result, bool) {
	if msg == nil {
		return Result{Skip: SkipNoAuthor}, false
	}
	if msg.GuildID == "" && msg.ChannelID != "" {
		if guildID, ok := e.dir.ChannelGuild(msg.ChannelID); ok {
			msg.GuildID = guildID
		}
	}

	res := e.Evaluate(msg)
	if !res.Matched {
		if res.Skip != SkipNone {
			e.log.Debug("message skipped", "message_id", msg.ID, "reason", res.Skip)
		}
		return res, false
	}

	me, ok := e.dir.CurrentUserID()
	if !ok || me == "" {
		return res, false
	}
	flagged := msg.MarkMentioned(me)
	e.log.Debug("message matched",
		"message_id", msg.ID,
		"channel_id", msg.ChannelID,
		"reason", res.Reason,
		"keyword", res.Keyword,
		"flagged", flagged,
	)
	return res, flagged
}

// Matches reports whether msg matches the current settings.
// It has no side effects.
func (e *Engine) Matches(msg *Message) bool {
	return e.Evaluate(msg).Matched
}

// Attach subscribes the engine to a host. Every message the host delivers
// is handled; messages that gain a mention are passed to
// Host.FlagAsMentioned. Host errors and panics raised while handling a
// message are logged and never reach the host's dispatch loop.
// The returned function detaches the engine.
func (e *Engine) Attach(h Host) (detach func()) {
	return h.OnMessageArrived(func(msg *Message) {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("panic while handling message", "panic", r)
			}
		}()

		_, flagged := e.HandleMessage(msg)
		if !flagged {
			return
		}
		if err := h.FlagAsMentioned(msg); err != nil {
			e.log.Warn("host failed to flag mention", "message_id", msg.ID, "error", err)
		}
	})
}
