package keywordping_test

import (
	"sync"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// fakeDirectory is an in-memory Directory for tests.
type fakeDirectory struct {
	me       string
	channels map[string]string           // channel ID -> guild ID
	nicks    map[string]string           // guild ID + "/" + user ID -> nickname
	users    map[string]keywordping.User // user ID -> fresh record
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		me: "1000",
		channels: map[string]string{
			"10": "100",
			"11": "100",
			"20": "200",
		},
		nicks: map[string]string{},
		users: map[string]keywordping.User{},
	}
}

func (d *fakeDirectory) CurrentUserID() (string, bool) {
	return d.me, d.me != ""
}

func (d *fakeDirectory) ChannelGuild(channelID string) (string, bool) {
	g, ok := d.channels[channelID]
	return g, ok
}

func (d *fakeDirectory) Nickname(guildID, userID string) (string, bool) {
	n, ok := d.nicks[guildID+"/"+userID]
	return n, ok
}

func (d *fakeDirectory) User(userID string) (keywordping.User, bool) {
	u, ok := d.users[userID]
	return u, ok
}

// fakeHost records flagged messages and lets tests push messages.
type fakeHost struct {
	mu       sync.Mutex
	handlers []func(*keywordping.Message)
	flagged  []*keywordping.Message
	flagErr  error
}

func (h *fakeHost) OnMessageArrived(fn func(*keywordping.Message)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, fn)
	idx := len(h.handlers) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.handlers[idx] = nil
	}
}

func (h *fakeHost) FlagAsMentioned(msg *keywordping.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flagged = append(h.flagged, msg)
	return h.flagErr
}

func (h *fakeHost) deliver(msg *keywordping.Message) {
	h.mu.Lock()
	handlers := append([]func(*keywordping.Message){}, h.handlers...)
	h.mu.Unlock()
	for _, fn := range handlers {
		if fn != nil {
			fn(msg)
		}
	}
}

func (h *fakeHost) flaggedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.flagged)
}

// message builds a human message in channel 10 (guild 100).
func message(authorID, username, content string) *keywordping.Message {
	return &keywordping.Message{
		ID:        "m-" + content,
		ChannelID: "10",
		Author:    keywordping.User{ID: authorID, Username: username},
		Content:   content,
	}
}
