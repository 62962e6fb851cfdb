package keywordping

import (
	"strings"

	"github.com/samber/lo"

	"github.com/keywordping/keywordping-go/pkg/keywordping/keyword"
)

// Reason names what made a message match.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonVIP     Reason = "vip"
	ReasonKeyword Reason = "keyword"
)

// SkipReason names the precondition that kept a message from being
// evaluated at all.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipNoAuthor      SkipReason = "no_author"
	SkipEmpty         SkipReason = "empty"
	SkipOptimistic    SkipReason = "optimistic"
	SkipNoCurrentUser SkipReason = "no_current_user"
	SkipNoGuild       SkipReason = "no_guild"
	SkipSelf          SkipReason = "self"
	SkipBot           SkipReason = "bot"
	SkipGuildDisabled SkipReason = "guild_disabled"
)

// Result is the outcome of evaluating one message.
type Result struct {
	Matched bool       `json:"matched"`
	Reason  Reason     `json:"reason,omitempty"`
	Keyword string     `json:"keyword,omitempty"` // Raw keyword line that matched
	Skip    SkipReason `json:"skip,omitempty"`
}

// target carries the per-message values resolved during evaluation.
type target struct {
	msg *Message
	// msgGuildID is the message's own guild ID, falling back to the guild
	// that owns its channel.
	msgGuildID string
}

// Evaluate decides whether msg should be treated as mentioning the current
// user. It never modifies msg and never fails: lookup misses and match
// errors degrade to "no match".
//
// A message is evaluated only if it has an author and content or embeds,
// is not an optimistic echo, belongs to a guild channel, was not written
// by the current user or a bot, and its guild is not disabled. VIP entries
// are checked first; otherwise keywords are tried in order and the first
// match wins.
func (e *Engine) Evaluate(msg *Message) Result {
	switch {
	case msg == nil || msg.Author.ID == "":
		return Result{Skip: SkipNoAuthor}
	case msg.isEmpty():
		return Result{Skip: SkipEmpty}
	case msg.Optimistic:
		return Result{Skip: SkipOptimistic}
	}

	me, ok := e.dir.CurrentUserID()
	if !ok || me == "" {
		return Result{Skip: SkipNoCurrentUser}
	}
	guildID, ok := e.dir.ChannelGuild(msg.ChannelID)
	if !ok || guildID == "" {
		return Result{Skip: SkipNoGuild}
	}
	if msg.Author.ID == me {
		return Result{Skip: SkipSelf}
	}
	if msg.Author.Bot {
		return Result{Skip: SkipBot}
	}

	st := e.state.Load()
	if !st.settings.GuildEnabled(guildID) {
		return Result{Skip: SkipGuildDisabled}
	}

	t := target{msg: msg, msgGuildID: msg.GuildID}
	if t.msgGuildID == "" {
		t.msgGuildID = guildID
	}

	if e.matchesUser(st.vip, msg.Author, guildID) {
		return Result{Matched: true, Reason: ReasonVIP}
	}

	for _, p := range st.patterns {
		if !p.Scope.IsZero() && !e.passes(p.Scope, t) {
			continue
		}
		if e.test(p, msg) {
			return Result{Matched: true, Reason: ReasonKeyword, Keyword: p.Raw}
		}
	}
	return Result{}
}

// test matches p against the content and then each serialized embed.
func (e *Engine) test(p *keyword.Pattern, msg *Message) bool {
	if e.matchText(p, msg, msg.Content) {
		return true
	}
	for _, embed := range msg.Embeds {
		if e.matchText(p, msg, string(embed)) {
			return true
		}
	}
	return false
}

func (e *Engine) matchText(p *keyword.Pattern, msg *Message, text string) bool {
	ok, err := p.MatchString(text)
	if err != nil {
		e.log.Warn("keyword match failed", "keyword", p.Raw, "message_id", msg.ID, "error", err)
		return false
	}
	return ok
}

// passes reports whether a scoped keyword applies to the target message.
func (e *Engine) passes(s keyword.Scope, t target) bool {
	switch s.Kind {
	case keyword.ScopeAuthor:
		if isDigits(s.ID) {
			return t.msg.Author.ID == s.ID
		}
		return e.matchesUser([]string{s.ID}, t.msg.Author, t.msgGuildID)
	case keyword.ScopeChannel:
		return t.msg.ChannelID == s.ID
	case keyword.ScopeGuild:
		return t.msgGuildID == s.ID
	default:
		return true
	}
}

// matchesUser reports whether any entry names the author: an exact user ID,
// or a case-insensitive username, display name or guild nickname.
func (e *Engine) matchesUser(entries []string, author User, guildID string) bool {
	if len(entries) == 0 {
		return false
	}

	user := author
	if u, ok := e.dir.User(author.ID); ok {
		user = u
	}
	username := lo.CoalesceOrEmpty(user.Username, author.Username)
	displayName := lo.CoalesceOrEmpty(user.GlobalName, author.GlobalName)

	var nickname string
	if guildID != "" {
		nickname, _ = e.dir.Nickname(guildID, author.ID)
	}

	for _, entry := range entries {
		if entry == author.ID ||
			sameName(entry, username) ||
			sameName(entry, displayName) ||
			sameName(entry, nickname) {
			return true
		}
	}
	return false
}

func sameName(entry, name string) bool {
	return name != "" && strings.EqualFold(entry, name)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
