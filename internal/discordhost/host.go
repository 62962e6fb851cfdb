// Package discordhost connects the keyword engine to a live Discord
// gateway session.
//
// The bot receives guild messages, the engine decides which ones matter to
// the owner, and each flagged message is relayed to the owner as a direct
// message. Notifications are rate limited.
package discordhost

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

const (
	// DefaultNotifyRate is the sustained notification rate (one per 2s).
	DefaultNotifyRate = rate.Limit(0.5)
	// DefaultNotifyBurst is the number of notifications allowed at once.
	DefaultNotifyBurst = 5

	intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages
)

// Sentinel errors.
var (
	ErrMissingToken = errors.New("discord token is required")
	ErrMissingOwner = errors.New("owner user ID is required")
	ErrRateLimited  = errors.New("notification dropped: rate limit exceeded")
)

// Config configures a Host.
type Config struct {
	Token   string
	OwnerID string // User whose keywords are evaluated and who is notified

	Logger      *slog.Logger
	NotifyRate  rate.Limit // Default: DefaultNotifyRate
	NotifyBurst int        // Default: DefaultNotifyBurst

	// Explain returns why a flagged message matched, for the notification
	// text. Usually Engine.Evaluate.
	Explain func(*keywordping.Message) keywordping.Result
}

// messenger is the part of the REST API used to deliver notifications.
type messenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Host is a keywordping.Host and keywordping.Directory backed by a
// discordgo session and its state cache.
type Host struct {
	session *discordgo.Session
	api     messenger
	ownerID string
	log     *slog.Logger
	limiter *rate.Limiter
	explain func(*keywordping.Message) keywordping.Result

	cache *cache

	mu        sync.Mutex
	handlers  map[int]func(*keywordping.Message)
	order     []int
	nextID    int
	dmChannel string
	removeFns []func()
}

var (
	_ keywordping.Host      = (*Host)(nil)
	_ keywordping.Directory = (*Host)(nil)
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// New creates a Host. The gateway connection is opened by Open.
func New(cfg Config) (*Host, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.OwnerID == "" {
		return nil, ErrMissingOwner
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = intents
	// Deliver events one at a time, in arrival order.
	session.SyncEvents = true
	session.StateEnabled = true

	return newHost(session, cfg), nil
}

func newHost(session *discordgo.Session, cfg Config) *Host {
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger
	}
	limit := cfg.NotifyRate
	if limit <= 0 {
		limit = DefaultNotifyRate
	}
	burst := cfg.NotifyBurst
	if burst <= 0 {
		burst = DefaultNotifyBurst
	}

	h := &Host{
		session:  session,
		api:      session,
		ownerID:  cfg.OwnerID,
		log:      logger,
		limiter:  rate.NewLimiter(limit, burst),
		explain:  cfg.Explain,
		cache:    newCache(),
		handlers: make(map[int]func(*keywordping.Message)),
	}
	h.removeFns = append(h.removeFns,
		session.AddHandler(h.onReady),
		session.AddHandler(h.onMessageCreate),
		session.AddHandler(h.onGuildMemberUpdate),
	)
	return h
}

// Open connects to the gateway.
func (h *Host) Open() error {
	if err := h.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	return nil
}

// Close removes the event handlers and closes the gateway connection.
func (h *Host) Close() error {
	h.mu.Lock()
	removeFns := h.removeFns
	h.removeFns = nil
	h.mu.Unlock()

	for _, remove := range removeFns {
		remove()
	}
	return h.session.Close()
}

// OnMessageArrived implements keywordping.Host.
func (h *Host) OnMessageArrived(fn func(*keywordping.Message)) func() {
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

// FlagAsMentioned implements keywordping.Host by sending the owner a
// direct message describing the match.
func (h *Host) FlagAsMentioned(msg *keywordping.Message) error {
	if !h.limiter.Allow() {
		return ErrRateLimited
	}

	var res keywordping.Result
	if h.explain != nil {
		res = h.explain(msg)
	}

	channelID, err := h.ownerChannel()
	if err != nil {
		return err
	}
	if _, err := h.api.ChannelMessageSend(channelID, formatNotification(msg, res)); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	h.log.Debug("notification sent", "message_id", msg.ID, "reason", res.Reason)
	return nil
}

func (h *Host) ownerChannel() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dmChannel != "" {
		return h.dmChannel, nil
	}
	ch, err := h.api.UserChannelCreate(h.ownerID)
	if err != nil {
		return "", fmt.Errorf("opening DM channel: %w", err)
	}
	h.dmChannel = ch.ID
	return h.dmChannel, nil
}

func (h *Host) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		h.log.Info("connected to discord", "bot", r.User.Username, "guilds", len(r.Guilds))
	}
}

func (h *Host) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	h.cache.observe(m.Message)

	msg := convertMessage(m.Message)
	for _, fn := range h.subscribers() {
		fn(msg)
	}
}

func (h *Host) onGuildMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m == nil || m.Member == nil || m.User == nil {
		return
	}
	h.cache.setNick(m.GuildID, m.User.ID, m.Nick)
	h.cache.setUser(m.User)
}

func (h *Host) subscribers() []func(*keywordping.Message) {
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
