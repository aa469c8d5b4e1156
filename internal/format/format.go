// Package format provides output formatting utilities for CLI display.
//
// Centralises formatting logic so that command implementations focus on
// business logic while this package handles presentation: ledger tables,
// change lists and validation reports.
package format

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/textfix"
)

const retired = " [retired]"

// humanSize formats a byte count as human-readable (e.g., "1.2K", "3.4M").
func humanSize(bytes int64) string {
	const (
		_        = iota
		KB int64 = 1 << (10 * iota)
		MB
		GB
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fG", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1fM", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1fK", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func date(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

// List prints story ids, one per line, marking retired stories.
func List(w io.Writer, metas []store.Meta) error {
	for _, m := range metas {
		suffix := ""
		if m.DeletedAt != nil {
			suffix = retired
		}
		fmt.Fprintf(w, "%s%s\n", m.Story, suffix)
	}
	return nil
}

// Long prints the latest version of each story as a table.
func Long(w io.Writer, metas []store.Meta) error {
	if len(metas) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		id := m.Story
		if m.DeletedAt != nil {
			id += retired
		}
		rows = append(rows, []string{
			id,
			"v" + strconv.Itoa(m.Version),
			strconv.Itoa(m.Steps),
			strconv.Itoa(m.Warnings),
			humanSize(m.Size),
			date(m.CreatedAt),
			orDash(m.Author),
			orDash(m.Title),
		})
	}
	_, err := fmt.Fprintln(w, renderTable(
		[]string{"STORY", "VER", "STEPS", "WARN", "SIZE", "UPDATED", "AUTHOR", "TITLE"},
		rows,
		[]align{left, right, right, right, right, left, left, left},
	))
	return err
}

// History prints versions, newest first, as a table.
func History(w io.Writer, versions []store.Version) error {
	if len(versions) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []string{
			"v" + strconv.Itoa(v.Version),
			v.Key,
			date(v.CreatedAt),
			orDash(v.Author),
			strconv.Itoa(v.Warnings),
			v.Digest[:min(12, len(v.Digest))],
			orDash(v.Message),
		})
	}
	_, err := fmt.Fprintln(w, renderTable(
		[]string{"VER", "KEY", "PUBLISHED", "AUTHOR", "WARN", "DIGEST", "MESSAGE"},
		rows,
		[]align{right, left, left, left, right, left, left},
	))
	return err
}

// HistoryDiff prints version history with diffs between consecutive
// versions. Versions are expected newest first.
func HistoryDiff(w io.Writer, versions []store.Version, colour bool) error {
	for i := 0; i < len(versions)-1; i++ {
		newer := versions[i]
		older := versions[i+1]

		fmt.Fprintf(w, "=== v%d -> v%d (%s by %s) ===\n",
			older.Version, newer.Version, date(newer.CreatedAt), orDash(newer.Author))
		if newer.Message != "" {
			fmt.Fprintf(w, "Message: %s\n", newer.Message)
		}

		ol := "v" + strconv.Itoa(older.Version)
		nl := "v" + strconv.Itoa(newer.Version)
		r := diff.Compute(older.Content, newer.Content, ol, nl)
		a, errA := story.Decode([]byte(older.Content))
		b, errB := story.Decode([]byte(newer.Content))
		if errA == nil && errB == nil {
			r.Steps = diff.Steps(a, b)
		}
		fmt.Fprint(w, r.Format(colour))
		fmt.Fprintln(w)
	}
	return nil
}

// Changes prints reference rewrites, one per line.
func Changes(w io.Writer, changes []story.Change) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "no changes")
		return err
	}
	for _, c := range changes {
		rule := ""
		if c.Rule != "" {
			rule = "  (" + c.Rule + ")"
		}
		fmt.Fprintf(w, "%s%s\n", c, rule)
	}
	return nil
}

// Fixes prints text repairs, one per line.
func Fixes(w io.Writer, fixes []textfix.Fix) error {
	if len(fixes) == 0 {
		_, err := fmt.Fprintln(w, "no changes")
		return err
	}
	for _, f := range fixes {
		fmt.Fprintf(w, "%s.%s: %q -> %q\n", f.Step, f.Field, f.Before, f.After)
	}
	return nil
}
