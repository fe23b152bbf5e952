package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Stats counts changed lines.
type Stats struct {
	Added   int
	Removed int
}

// Changed reports whether any line differs.
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// Line is a single rendered diff line.
type Line struct {
	Op   diffmatchpatch.Operation
	Text string
}

// Lines computes a line-level diff between before and after.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var lines []Line
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			lines = append(lines, Line{Op: d.Type, Text: text})
		}
	}
	return lines
}

// Compute returns the added/removed line counts between before and after.
func Compute(before, after string) Stats {
	var stats Stats
	for _, l := range Lines(before, after) {
		switch l.Op {
		case diffmatchpatch.DiffInsert:
			stats.Added++
		case diffmatchpatch.DiffDelete:
			stats.Removed++
		}
	}
	return stats
}

// Write renders the changed lines of the diff for path to w, prefixed with "-" or "+".
// Unchanged lines are omitted.
func Write(w io.Writer, path, before, after string) (Stats, error) {
	var stats Stats
	var sb strings.Builder
	for _, l := range Lines(before, after) {
		switch l.Op {
		case diffmatchpatch.DiffInsert:
			stats.Added++
			sb.WriteString("+ " + l.Text + "\n")
		case diffmatchpatch.DiffDelete:
			stats.Removed++
			sb.WriteString("- " + l.Text + "\n")
		}
	}
	if !stats.Changed() {
		_, err := fmt.Fprintf(w, "--- %s (no changes)\n", path)
		return stats, err
	}
	if _, err := fmt.Fprintf(w, "--- %s (%s)\n", path, stats); err != nil {
		return stats, err
	}
	_, err := io.WriteString(w, sb.String())
	return stats, err
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}
