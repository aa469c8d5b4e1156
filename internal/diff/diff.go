// Package diff computes and formats differences between story versions: a
// line diff of the encoded JSON plus a step-level summary of what changed.
package diff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jpl-au/sopstory/internal/story"
)

// contextLines is the number of unchanged lines shown before/after changes.
// When equal sections exceed 2*contextLines, they're collapsed with "...".
const contextLines = 3

// Options configures a ledger diff.
type Options struct {
	Version1       int    // First version to compare; 0 means latest-1 (or the file case)
	Version2       int    // Second version to compare; 0 means latest
	IncludeDeleted bool   // Allow diffing retired stories
	File           string // Path of a working file compared against the latest version
}

// Differ is the interface for diff operations.
type Differ interface {
	Diff(ctx context.Context, id string, opts Options) (Result, error)
}

// Run executes a diff operation and writes output to w.
func Run(ctx context.Context, w io.Writer, svc Differ, id string, opts Options, colour bool) (Result, error) {
	r, err := svc.Diff(ctx, id, opts)
	if err != nil {
		return r, err
	}
	fmt.Fprint(w, r.Format(colour))
	return r, nil
}

// Result holds diff output.
type Result struct {
	Old   string  `json:"old"`
	New   string  `json:"new"`
	Diff  string  `json:"diff"`
	Steps Summary `json:"steps"`
}

// Summary lists step ids added, removed or changed between two documents.
type Summary struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
	// Start holds "old -> new" when the start step moved.
	Start string `json:"start,omitempty"`
}

// Empty reports whether nothing changed at step level.
func (s Summary) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Changed) == 0 && s.Start == ""
}

// Compute returns a line diff between old and new content.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldContent, newContent)
	d := dmp.DiffMain(a, b, false)
	d = dmp.DiffCharsToLines(d, lines)

	return Result{
		Old:  oldLabel,
		New:  newLabel,
		Diff: format(d),
	}
}

// Documents diffs two decoded documents: canonical encodings line by line
// and steps by id.
func Documents(old, new *story.Document, oldLabel, newLabel string) (Result, error) {
	a, err := story.Encode(old)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", oldLabel, err)
	}
	b, err := story.Encode(new)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", newLabel, err)
	}
	r := Compute(string(a), string(b), oldLabel, newLabel)
	r.Steps = Steps(old, new)
	return r, nil
}

// Steps summarises step-level changes. Order follows the documents: removed
// and changed in old order, added in new order.
func Steps(old, new *story.Document) Summary {
	var s Summary
	for _, st := range old.Steps {
		other, ok := new.Step(st.ID)
		switch {
		case !ok:
			s.Removed = append(s.Removed, st.ID)
		case !sameStep(&st, other):
			s.Changed = append(s.Changed, st.ID)
		}
	}
	for _, st := range new.Steps {
		if !old.Has(st.ID) {
			s.Added = append(s.Added, st.ID)
		}
	}
	if old.StartID != new.StartID {
		s.Start = old.StartID + " -> " + new.StartID
	}
	return s
}

// sameStep compares steps by their encoding, so unknown keys count and
// source whitespace does not.
func sameStep(a, b *story.Step) bool {
	x, err := story.EncodeStep(a)
	if err != nil {
		return reflect.DeepEqual(*a, *b)
	}
	y, err := story.EncodeStep(b)
	if err != nil {
		return reflect.DeepEqual(*a, *b)
	}
	return bytes.Equal(x, y)
}

// format converts diffs to unified-style text.
func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		// Trim trailing newline to avoid artefact empty string from Split
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 2*contextLines {
				for i := range contextLines {
					b.WriteString("  " + lines[i] + "\n")
				}
				b.WriteString("  ...\n")
				for i := len(lines) - contextLines; i < len(lines); i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
			} else {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
			}
		}
	}
	return b.String()
}

// Colourise adds ANSI colours to diff output.
func Colourise(d string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	)

	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red + line + reset + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green + line + reset + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the full diff with header and, when steps changed, a
// trailing step summary.
func (r Result) Format(colour bool) string {
	header := fmt.Sprintf("--- %s\n+++ %s\n", r.Old, r.New)
	body := r.Diff
	if colour {
		body = Colourise(body)
	}
	if r.Steps.Empty() {
		return header + body
	}

	var b strings.Builder
	b.WriteString(header + body + "\n")
	writeList(&b, "added", r.Steps.Added)
	writeList(&b, "removed", r.Steps.Removed)
	writeList(&b, "changed", r.Steps.Changed)
	if r.Steps.Start != "" {
		fmt.Fprintf(&b, "start: %s\n", r.Steps.Start)
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, ids []string) {
	if len(ids) > 0 {
		fmt.Fprintf(b, "%s: %s\n", label, strings.Join(ids, ", "))
	}
}

// ParseVersionRange parses a version range string like "3:5" into two integers.
func ParseVersionRange(s string) (v1, v2 int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid version range %q (expected v1:v2)", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return 0, 0, fmt.Errorf("invalid version range %q: both versions required", s)
	}
	v1, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start version: %w", err)
	}
	v2, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end version: %w", err)
	}
	if v1 < 1 {
		return 0, 0, fmt.Errorf("start version must be >= 1, got %d", v1)
	}
	if v2 < 1 {
		return 0, 0, fmt.Errorf("end version must be >= 1, got %d", v2)
	}
	return v1, v2, nil
}
