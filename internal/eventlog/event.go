// Package eventlog reads chat gateway events from JSON Lines files.
//
// Each line is one dispatch event. MESSAGE_CREATE events become
// keywordping messages; READY, CHANNEL_CREATE and GUILD_MEMBER_UPDATE
// events only teach the Directory about the current user, channels and
// nicknames. Unknown event types are ignored.
package eventlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// MaxLineBytes is the longest event line accepted (1 MiB).
const MaxLineBytes = 1 * 1024 * 1024

// Type is a gateway dispatch type.
type Type string

const (
	TypeReady             Type = "READY"
	TypeMessageCreate     Type = "MESSAGE_CREATE"
	TypeChannelCreate     Type = "CHANNEL_CREATE"
	TypeGuildMemberUpdate Type = "GUILD_MEMBER_UPDATE"
)

// Sentinel errors.
var (
	ErrMissingType    = errors.New("event has no type")
	ErrMissingMessage = errors.New("MESSAGE_CREATE event has no message")
	ErrLineTooLong    = errors.New("event line too long")
)

// Event is one line of an event log.
type Event struct {
	Type       Type `json:"type"`
	Optimistic bool `json:"optimistic,omitempty"`

	// MESSAGE_CREATE
	Message *MessagePayload `json:"message,omitempty"`

	// READY (current user), GUILD_MEMBER_UPDATE (member)
	User *UserPayload `json:"user,omitempty"`

	// CHANNEL_CREATE
	Channel *ChannelPayload `json:"channel,omitempty"`

	// GUILD_MEMBER_UPDATE
	GuildID string  `json:"guild_id,omitempty"`
	Nick    *string `json:"nick,omitempty"`
}

// UserPayload is a user object as sent by the gateway.
type UserPayload struct {
	ID         string `json:"id"`
	Username   string `json:"username,omitempty"`
	GlobalName string `json:"global_name,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

// MemberPayload is the partial guild member attached to a message.
type MemberPayload struct {
	Nick string `json:"nick,omitempty"`
}

// ChannelPayload is a channel object.
type ChannelPayload struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id,omitempty"`
}

// MessagePayload is a message object.
type MessagePayload struct {
	ID        string            `json:"id,omitempty"`
	ChannelID string            `json:"channel_id"`
	GuildID   string            `json:"guild_id,omitempty"`
	Author    *UserPayload      `json:"author,omitempty"`
	Member    *MemberPayload    `json:"member,omitempty"`
	Content   string            `json:"content,omitempty"`
	Embeds    []json.RawMessage `json:"embeds,omitempty"`
	Mentions  []UserPayload     `json:"mentions,omitempty"`
}

// DecodeError reports a line that could not be decoded.
type DecodeError struct {
	Line int // 1-based line number, 0 if unknown
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("event line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses one event line. Blank lines decode to (nil, nil).
func Decode(line []byte) (*Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	if len(line) > MaxLineBytes {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %d bytes (max %d)", ErrLineTooLong, len(line), MaxLineBytes)}
	}

	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if ev.Type == "" {
		return nil, &DecodeError{Err: ErrMissingType}
	}
	if ev.Type == TypeMessageCreate && ev.Message == nil {
		return nil, &DecodeError{Err: ErrMissingMessage}
	}
	return &ev, nil
}

// ToMessage converts a MESSAGE_CREATE event into a keywordping message.
// It returns nil for any other event. Embeds are compacted so keywords see
// the same text regardless of how the log was formatted.
func (ev *Event) ToMessage() *keywordping.Message {
	if ev == nil || ev.Type != TypeMessageCreate || ev.Message == nil {
		return nil
	}
	p := ev.Message

	msg := &keywordping.Message{
		ID:         p.ID,
		ChannelID:  p.ChannelID,
		GuildID:    p.GuildID,
		Content:    p.Content,
		Optimistic: ev.Optimistic,
	}
	if p.Author != nil {
		msg.Author = p.Author.toUser()
	}
	if len(p.Embeds) > 0 {
		msg.Embeds = lo.Map(p.Embeds, func(raw json.RawMessage, _ int) json.RawMessage {
			return compact(raw)
		})
	}
	if len(p.Mentions) > 0 {
		msg.Mentions = lo.Map(p.Mentions, func(u UserPayload, _ int) string {
			return u.ID
		})
	}
	return msg
}

func (u *UserPayload) toUser() keywordping.User {
	return keywordping.User{
		ID:         u.ID,
		Username:   u.Username,
		GlobalName: u.GlobalName,
		Bot:        u.Bot,
	}
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
