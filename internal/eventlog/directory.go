package eventlog

import (
	"sync"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// Directory is a keywordping.Directory that learns from the events it
// observes: the current user from READY, channel ownership from
// CHANNEL_CREATE and guild messages, user records from message authors and
// nicknames from message members and GUILD_MEMBER_UPDATE.
type Directory struct {
	mu       sync.RWMutex
	me       string
	channels map[string]string           // channel ID -> guild ID
	nicks    map[memberKey]string        // per-guild nickname
	users    map[string]keywordping.User // freshest known record
}

type memberKey struct {
	guildID string
	userID  string
}

var _ keywordping.Directory = (*Directory)(nil)

// NewDirectory returns an empty Directory. ownerID, if non-empty, is the
// current user until a READY event says otherwise.
func NewDirectory(ownerID string) *Directory {
	return &Directory{
		me:       ownerID,
		channels: make(map[string]string),
		nicks:    make(map[memberKey]string),
		users:    make(map[string]keywordping.User),
	}
}

// Observe records what ev reveals about users, channels and members.
func (d *Directory) Observe(ev *Event) {
	if ev == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Type {
	case TypeReady:
		if ev.User != nil && ev.User.ID != "" {
			d.me = ev.User.ID
			d.users[ev.User.ID] = ev.User.toUser()
		}
	case TypeChannelCreate:
		if ev.Channel != nil && ev.Channel.ID != "" && ev.Channel.GuildID != "" {
			d.channels[ev.Channel.ID] = ev.Channel.GuildID
		}
	case TypeGuildMemberUpdate:
		if ev.User == nil || ev.User.ID == "" || ev.GuildID == "" {
			return
		}
		d.users[ev.User.ID] = ev.User.toUser()
		if ev.Nick != nil {
			d.setNick(ev.GuildID, ev.User.ID, *ev.Nick)
		}
	case TypeMessageCreate:
		d.observeMessage(ev.Message)
	}
}

func (d *Directory) observeMessage(p *MessagePayload) {
	if p == nil {
		return
	}
	if p.ChannelID != "" && p.GuildID != "" {
		d.channels[p.ChannelID] = p.GuildID
	}
	if p.Author == nil || p.Author.ID == "" {
		return
	}
	d.users[p.Author.ID] = p.Author.toUser()
	if p.Member != nil && p.GuildID != "" {
		d.setNick(p.GuildID, p.Author.ID, p.Member.Nick)
	}
}

func (d *Directory) setNick(guildID, userID, nick string) {
	key := memberKey{guildID: guildID, userID: userID}
	if nick == "" {
		delete(d.nicks, key)
		return
	}
	d.nicks[key] = nick
}

// SetChannelGuild records that channelID belongs to guildID.
func (d *Directory) SetChannelGuild(channelID, guildID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[channelID] = guildID
}

// CurrentUserID implements keywordping.Directory.
func (d *Directory) CurrentUserID() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.me, d.me != ""
}

// ChannelGuild implements keywordping.Directory.
func (d *Directory) ChannelGuild(channelID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.channels[channelID]
	return g, ok
}

// Nickname implements keywordping.Directory.
func (d *Directory) Nickname(guildID, userID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nicks[memberKey{guildID: guildID, userID: userID}]
	return n, ok
}

// User implements keywordping.Directory.
func (d *Directory) User(userID string) (keywordping.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	return u, ok
}
