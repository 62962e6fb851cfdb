package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
)

// appendLines adds each non-blank line not already present, keeping the
// existing order.
func appendLines(existing []string, add ...string) []string {
	out := slices.Clone(existing)
	for _, line := range add {
		if line == "" || slices.Contains(out, line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// removeLines drops every occurrence of the given lines. It also reports
// the lines that were not found.
func removeLines(existing []string, remove ...string) (kept, missing []string) {
	kept = lo.Without(existing, remove...)
	missing = lo.Filter(remove, func(line string, _ int) bool {
		return !slices.Contains(existing, line)
	})
	return kept, missing
}

// printList writes one numbered line per entry, or a placeholder.
func printList(out io.Writer, empty string, lines []string) error {
	if len(lines) == 0 {
		_, err := fmt.Fprintln(out, empty)
		return err
	}
	for i, line := range lines {
		if _, err := fmt.Fprintf(out, "%3d  %s\n", i+1, line); err != nil {
			return err
		}
	}
	return nil
}
