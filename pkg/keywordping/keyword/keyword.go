// Package keyword compiles user-configured keyword lines into matchers.
//
// Each line of a keyword list is one of:
//
//	hello              plain text, case-insensitive whole-word match
//	/^bye$/i           regular expression with optional flags (gimsuy)
//	@alice:urgent      only messages written by alice
//	#123456:deploy     only messages in channel 123456
//	987654:release     only messages in guild 987654
//
// Regular expressions use ECMAScript semantics (lookbehind, ASCII \w),
// so keyword lists written for the browser client keep behaving the same.
//
// Example:
//
//	patterns := keyword.CompileAll([]string{"hello", "/^bye$/i", "@alice:urgent"})
//	for _, p := range patterns {
//	    ok, _ := p.MatchString("well hello there")
//	    fmt.Println(p.Raw, ok)
//	}
package keyword

import (
	"github.com/dlclark/regexp2"
)

// ScopeKind identifies what a scoped keyword is restricted to.
type ScopeKind int

const (
	// ScopeNone applies the keyword to every message.
	ScopeNone ScopeKind = iota
	// ScopeAuthor restricts the keyword to one author (ID or name).
	ScopeAuthor
	// ScopeChannel restricts the keyword to one channel ID.
	ScopeChannel
	// ScopeGuild restricts the keyword to one guild ID.
	ScopeGuild
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeNone:
		return "none"
	case ScopeAuthor:
		return "author"
	case ScopeChannel:
		return "channel"
	case ScopeGuild:
		return "guild"
	default:
		return "unknown"
	}
}

// Scope restricts where a keyword applies.
// The zero value is ScopeNone and always applies.
type Scope struct {
	Kind ScopeKind
	// ID is a numeric ID for channel and guild scopes, and either a numeric
	// user ID or a user/display/nick name for author scopes.
	ID string
}

// IsZero reports whether the scope places no restriction.
func (s Scope) IsZero() bool {
	return s.Kind == ScopeNone
}

// Pattern is one compiled keyword line. It is immutable and safe for
// concurrent use.
type Pattern struct {
	// Raw is the keyword line exactly as configured.
	Raw string
	// Scope is the parsed scope prefix.
	Scope Scope
	// Regex is true when the line was written as /source/flags.
	Regex bool

	re     *regexp2.Regexp
	sticky bool
}

// MatchString reports whether s contains a match.
// An error is returned only when the match exceeds the configured timeout.
func (p *Pattern) MatchString(s string) (bool, error) {
	if !p.sticky {
		return p.re.MatchString(s)
	}
	// Sticky expressions must match at the start of the input.
	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return false, err
	}
	return m.Index == 0, nil
}

// String returns the configured keyword line.
func (p *Pattern) String() string {
	return p.Raw
}
