package discordhost

import (
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// cache holds what the host has learned from gateway events that the
// discordgo state does not keep, such as users seen only as authors.
type cache struct {
	mu       sync.RWMutex
	channels map[string]string // channel ID -> guild ID
	nicks    map[string]string // guild ID + "/" + user ID -> nickname
	users    map[string]keywordping.User
}

func newCache() *cache {
	return &cache{
		channels: make(map[string]string),
		nicks:    make(map[string]string),
		users:    make(map[string]keywordping.User),
	}
}

func (c *cache) observe(m *discordgo.Message) {
	if m.GuildID != "" && m.ChannelID != "" {
		c.mu.Lock()
		c.channels[m.ChannelID] = m.GuildID
		c.mu.Unlock()
	}
	if m.Author == nil {
		return
	}
	c.setUser(m.Author)
	if m.Member != nil && m.GuildID != "" {
		c.setNick(m.GuildID, m.Author.ID, m.Member.Nick)
	}
}

func (c *cache) setUser(u *discordgo.User) {
	if u == nil || u.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.ID] = keywordping.User{
		ID:         u.ID,
		Username:   u.Username,
		GlobalName: u.GlobalName,
		Bot:        u.Bot,
	}
}

func (c *cache) setNick(guildID, userID, nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := guildID + "/" + userID
	if nick == "" {
		delete(c.nicks, key)
		return
	}
	c.nicks[key] = nick
}

// CurrentUserID implements keywordping.Directory. The current user is the
// configured owner, not the bot account.
func (h *Host) CurrentUserID() (string, bool) {
	return h.ownerID, h.ownerID != ""
}

// ChannelGuild implements keywordping.Directory using the state cache,
// then channels seen on guild messages.
func (h *Host) ChannelGuild(channelID string) (string, bool) {
	if ch, err := h.session.State.Channel(channelID); err == nil && ch != nil {
		return ch.GuildID, ch.GuildID != ""
	}
	h.cache.mu.RLock()
	defer h.cache.mu.RUnlock()
	g, ok := h.cache.channels[channelID]
	return g, ok
}

// Nickname implements keywordping.Directory.
func (h *Host) Nickname(guildID, userID string) (string, bool) {
	if m, err := h.session.State.Member(guildID, userID); err == nil && m != nil && m.Nick != "" {
		return m.Nick, true
	}
	h.cache.mu.RLock()
	defer h.cache.mu.RUnlock()
	n, ok := h.cache.nicks[guildID+"/"+userID]
	return n, ok
}

// User implements keywordping.Directory.
func (h *Host) User(userID string) (keywordping.User, bool) {
	h.cache.mu.RLock()
	defer h.cache.mu.RUnlock()
	u, ok := h.cache.users[userID]
	return u, ok
}
