package keywordping

import (
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Settings is one immutable snapshot of a user's keyword configuration.
// Editors return new snapshots instead of modifying the receiver.
type Settings struct {
	// Keywords are the raw keyword lines, in evaluation order.
	Keywords []string `json:"keywords" yaml:"keywords"`
	// WhitelistedUsers are VIP entries: user IDs, usernames, display names
	// or nicknames whose messages always notify.
	WhitelistedUsers []string `json:"whitelistedUsers" yaml:"whitelistedUsers"`
	// Guilds holds per-guild overrides keyed by guild ID.
	Guilds map[string]GuildSettings `json:"guilds,omitempty" yaml:"guilds,omitempty"`
}

// GuildSettings holds per-guild settings.
type GuildSettings struct {
	// Enabled is nil when the user never toggled the guild.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// GuildEnabled reports whether messages in the guild are evaluated.
// Guilds are enabled unless explicitly disabled.
func (s Settings) GuildEnabled(guildID string) bool {
	g, ok := s.Guilds[guildID]
	if !ok || g.Enabled == nil {
		return true
	}
	return *g.Enabled
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	c := Settings{
		Keywords:         slices.Clone(s.Keywords),
		WhitelistedUsers: slices.Clone(s.WhitelistedUsers),
	}
	if s.Guilds != nil {
		c.Guilds = make(map[string]GuildSettings, len(s.Guilds))
		for id, g := range s.Guilds {
			if g.Enabled != nil {
				enabled := *g.Enabled
				g.Enabled = &enabled
			}
			c.Guilds[id] = g
		}
	}
	return c
}

// WithKeywords returns a copy of s with the keyword list replaced.
// Blank lines are dropped.
func (s Settings) WithKeywords(lines ...string) Settings {
	c := s.Clone()
	c.Keywords = NonBlank(lines)
	return c
}

// WithWhitelistedUsers returns a copy of s with the VIP list replaced.
// Blank lines are dropped.
func (s Settings) WithWhitelistedUsers(lines ...string) Settings {
	c := s.Clone()
	c.WhitelistedUsers = NonBlank(lines)
	return c
}

// WithGuildEnabled returns a copy of s with the guild explicitly enabled or
// disabled.
func (s Settings) WithGuildEnabled(guildID string, enabled bool) Settings {
	c := s.Clone()
	if c.Guilds == nil {
		c.Guilds = make(map[string]GuildSettings, 1)
	}
	g := c.Guilds[guildID]
	g.Enabled = &enabled
	c.Guilds[guildID] = g
	return c
}

// ToggleGuild returns a copy of s with the guild's enabled state flipped.
func (s Settings) ToggleGuild(guildID string) Settings {
	return s.WithGuildEnabled(guildID, !s.GuildEnabled(guildID))
}

// DisabledGuilds returns the IDs of explicitly disabled guilds, sorted.
func (s Settings) DisabledGuilds() []string {
	ids := lo.Filter(slices.Collect(maps.Keys(s.Guilds)), func(id string, _ int) bool {
		return !s.GuildEnabled(id)
	})
	slices.Sort(ids)
	return ids
}

// ParseLines splits editor text into lines, dropping blank ones.
// A trailing carriage return is removed from each line.
func ParseLines(text string) []string {
	return NonBlank(strings.Split(text, "\n"))
}

// NonBlank returns the lines that contain something other than whitespace.
// Kept lines are not trimmed, except for a trailing carriage return.
func NonBlank(lines []string) []string {
	return lo.FilterMap(lines, func(line string, _ int) (string, bool) {
		line = strings.TrimSuffix(line, "\r")
		return line, strings.TrimSpace(line) != ""
	})
}
