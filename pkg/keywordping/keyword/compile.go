package keyword

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single match of a compiled keyword.
// User-written expressions can backtrack catastrophically; regexp2 aborts
// the match once this much time has passed.
const DefaultMatchTimeout = 250 * time.Millisecond

// Option configures compilation.
type Option func(*compileConfig)

type compileConfig struct {
	matchTimeout time.Duration
}

func applyOptions(opts []Option) *compileConfig {
	cfg := &compileConfig{matchTimeout: DefaultMatchTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithMatchTimeout sets the per-match timeout of compiled patterns.
// A non-positive value disables the timeout.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *compileConfig) {
		c.matchTimeout = d
	}
}

// Compile parses and compiles one keyword line.
//
// Returns ErrEmptyKeyword for blank lines and *CompileError when a
// /source/flags line has malformed flags or an invalid expression.
// Plain keywords always compile: metacharacters are escaped and the text
// must appear as a whole word, case-insensitively. Punctuation next to the
// keyword still counts as a word boundary ("hello!" contains "hello").
func Compile(raw string, opts ...Option) (*Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyKeyword
	}
	cfg := applyOptions(opts)

	scope, body := Parse(raw)
	p := &Pattern{Raw: raw, Scope: scope}

	var (
		re  *regexp2.Regexp
		err error
	)
	if source, flags, ok := splitRegexLiteral(body); ok {
		opt, sticky, ferr := parseFlags(flags)
		if ferr != nil {
			return nil, &CompileError{
				Index:   -1,
				Raw:     raw,
				Field:   "flags",
				Message: ferr.Error(),
				Cause:   ferr,
			}
		}
		re, err = regexp2.Compile(source, opt)
		p.Regex = true
		p.sticky = sticky
	} else {
		re, err = regexp2.Compile(`(?<!\w)`+escapeLiteral(body)+`(?!\w)`, regexp2.ECMAScript|regexp2.IgnoreCase)
	}
	if err != nil {
		return nil, &CompileError{
			Index:   -1,
			Raw:     raw,
			Field:   "regex",
			Message: fmt.Sprintf("invalid regular expression: %v", err),
			Cause:   err,
		}
	}
	if cfg.matchTimeout > 0 {
		re.MatchTimeout = cfg.matchTimeout
	}
	p.re = re
	return p, nil
}

// parseFlags maps ECMAScript flags onto regexp2 options.
// g is accepted but changes nothing: matching is stateless.
func parseFlags(flags string) (regexp2.RegexOptions, bool, error) {
	var opt regexp2.RegexOptions = regexp2.ECMAScript
	sticky := false
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			return 0, false, fmt.Errorf("duplicate flag %q", f)
		}
		seen[f] = true
		switch f {
		case 'i':
			opt |= regexp2.IgnoreCase
		case 'm':
			opt |= regexp2.Multiline
		case 's':
			opt |= regexp2.Singleline
		case 'u':
			opt |= regexp2.Unicode
		case 'y':
			sticky = true
		case 'g':
		default:
			return 0, false, fmt.Errorf("unknown flag %q", f)
		}
	}
	return opt, sticky, nil
}

// CompileAll compiles a keyword list in order.
// Blank lines and lines that fail to compile are dropped silently; use
// InvalidKeywords to report them.
func CompileAll(raws []string, opts ...Option) []*Pattern {
	patterns := make([]*Pattern, 0, len(raws))
	for _, raw := range raws {
		p, err := Compile(raw, opts...)
		if err != nil {
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// Validate reports whether raw compiles.
// It returns nil for every plain keyword and for well-formed expressions.
func Validate(raw string) error {
	_, err := Compile(raw, WithMatchTimeout(0))
	return err
}

// InvalidKeywords returns one CompileError per non-blank line that fails to
// compile, with Index set to the line's position in raws.
func InvalidKeywords(raws []string) []*CompileError {
	var invalid []*CompileError
	for i, raw := range raws {
		err := Validate(raw)
		if err == nil || errors.Is(err, ErrEmptyKeyword) {
			continue
		}
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Index = i
			invalid = append(invalid, ce)
		}
	}
	return invalid
}
