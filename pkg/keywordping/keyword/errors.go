package keyword

import (
	"errors"
	"fmt"
)

// ErrEmptyKeyword is returned when compiling a blank keyword line.
var ErrEmptyKeyword = errors.New("keyword is empty")

// CompileError describes a keyword line that could not be compiled.
// Only regular expression keywords can fail: either the flags are
// malformed or the expression does not parse.
type CompileError struct {
	Index   int    // 0-based position in the keyword list, -1 if compiled alone
	Raw     string // Keyword line as configured
	Field   string // "flags" or "regex"
	Message string
	Cause   error // Underlying error (e.g., regexp2 parse error)
}

func (e *CompileError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("keyword[%d] %q: %s: %s", e.Index, e.Raw, e.Field, e.Message)
	}
	return fmt.Sprintf("keyword %q: %s: %s", e.Raw, e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *CompileError) Unwrap() error {
	return e.Cause
}
