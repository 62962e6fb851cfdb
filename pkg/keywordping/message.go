package keywordping

import (
	"encoding/json"
	"slices"
)

// User is the identity of a message author.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username,omitempty"`
	GlobalName string `json:"global_name,omitempty"` // Display name
	Bot        bool   `json:"bot,omitempty"`
}

// Message is a message delivered by a host.
type Message struct {
	ID        string `json:"id,omitempty"`
	ChannelID string `json:"channel_id"`
	// GuildID may be empty on arrival; HandleMessage fills it from the
	// channel's guild.
	GuildID string `json:"guild_id,omitempty"`
	Author  User   `json:"author"`
	Content string `json:"content,omitempty"`
	// Embeds hold each embed in its JSON form. Keywords are tested against
	// the serialized text.
	Embeds []json.RawMessage `json:"embeds,omitempty"`
	// Mentions lists the IDs of users the message mentions.
	Mentions  []string `json:"mentions,omitempty"`
	Mentioned bool     `json:"mentioned,omitempty"`
	// Optimistic marks a local echo of a message that is still being sent.
	Optimistic bool `json:"optimistic,omitempty"`
}

// MentionsUser reports whether userID is in the message's mention list.
func (m *Message) MentionsUser(userID string) bool {
	return slices.Contains(m.Mentions, userID)
}

// MarkMentioned adds userID to the mention list and sets Mentioned.
// It reports false, leaving the message untouched, if userID is already
// mentioned.
func (m *Message) MarkMentioned(userID string) bool {
	if m.MentionsUser(userID) {
		return false
	}
	m.Mentions = append(m.Mentions, userID)
	m.Mentioned = true
	return true
}

func (m *Message) isEmpty() bool {
	return m.Content == "" && len(m.Embeds) == 0
}
