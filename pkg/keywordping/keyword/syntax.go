package keyword

import (
	"regexp"
	"strings"
)

// Prefix grammar of a keyword line.
var (
	// Matches: "@alice:pattern", "@123:pattern"
	// Captures: (1) author identifier, (2) pattern
	authorPrefix = regexp.MustCompile(`^@([^:]+):(.+)$`)

	// Matches: "#123:pattern" (channel), "123:pattern" (guild)
	// Captures: (1) optional '#', (2) numeric ID, (3) pattern
	idPrefix = regexp.MustCompile(`^(#?)(\d+):(.+)$`)

	// Matches: "/source/flags"
	// Captures: (1) expression source, (2) flags
	regexLiteral = regexp.MustCompile(`^/(.+)/([gimsuy]*)$`)
)

// Parse splits a keyword line into its scope and the pattern body.
// Lines without a recognised prefix return the zero Scope and the line itself.
func Parse(raw string) (Scope, string) {
	if m := authorPrefix.FindStringSubmatch(raw); m != nil {
		return Scope{Kind: ScopeAuthor, ID: m[1]}, m[2]
	}
	if m := idPrefix.FindStringSubmatch(raw); m != nil {
		if m[1] == "#" {
			return Scope{Kind: ScopeChannel, ID: m[2]}, m[3]
		}
		return Scope{Kind: ScopeGuild, ID: m[2]}, m[3]
	}
	return Scope{}, raw
}

// splitRegexLiteral returns the source and flags of a /source/flags body.
func splitRegexLiteral(body string) (source, flags string, ok bool) {
	m := regexLiteral.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// literalMeta is the set of characters escaped in plain keywords.
const literalMeta = `.*+?^${}()|[]\`

// escapeLiteral escapes expression metacharacters in a plain keyword.
func escapeLiteral(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for _, c := range s {
		if strings.ContainsRune(literalMeta, c) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
