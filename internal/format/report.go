// report.go prints validation reports.
//
// Separated from format.go because reports have two renderings: the plain
// listing operators grep in CI logs, and a markdown summary rendered with
// glamour when stdout is a terminal.

package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/validate"
)

// Summary identifies the document a report belongs to. Doc may be nil when
// the document could not be modelled.
type Summary struct {
	Source string
	Doc    *story.Document
}

func (s Summary) header() (id, start string, steps int) {
	if s.Doc == nil {
		return "-", "-", 0
	}
	return orDash(s.Doc.ID), orDash(s.Doc.StartID), len(s.Doc.Steps)
}

// Report prints a report as plain text: a header, warnings, errors, then a
// verdict line.
func Report(w io.Writer, s Summary, r *validate.Report) error {
	id, start, steps := s.header()
	if s.Source != "" {
		fmt.Fprintf(w, "File:   %s\n", s.Source)
	}
	fmt.Fprintf(w, "Story:  %s\nStart:  %s\nSteps:  %d\n\n", id, start, steps)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "WARNINGS:")
		for _, m := range r.Warnings {
			fmt.Fprintln(w, " - "+m)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "ERRORS:")
		for _, m := range r.Errors {
			fmt.Fprintln(w, " - "+m)
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintln(w, Verdict(r))
	return err
}

// Verdict returns the one-line outcome of a report.
func Verdict(r *validate.Report) string {
	switch {
	case r.Structural:
		return "FAIL: document could not be read"
	case !r.OK():
		return fmt.Sprintf("FAIL: %s, %s", plural(len(r.Errors), "error"), plural(len(r.Warnings), "warning"))
	case len(r.Warnings) > 0:
		return fmt.Sprintf("OK: validation passed with %s", plural(len(r.Warnings), "warning"))
	default:
		return "OK: validation passed"
	}
}

// Markdown renders a report as a markdown document.
func Markdown(s Summary, r *validate.Report) string {
	id, start, steps := s.header()
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", id)
	if s.Source != "" {
		fmt.Fprintf(&b, "- **File:** `%s`\n", s.Source)
	}
	fmt.Fprintf(&b, "- **Start:** `%s`\n- **Steps:** %d\n\n", start, steps)

	section := func(title string, sev validate.Severity) {
		var rows []validate.Issue
		for _, is := range r.Issues {
			if is.Severity == sev {
				rows = append(rows, is)
			}
		}
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n| code | step | message |\n|---|---|---|\n", title)
		for _, is := range rows {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", is.Code, orDash(is.Step), escapeCell(is.Message))
		}
		b.WriteString("\n")
	}
	section("Errors", validate.SeverityError)
	section("Warnings", validate.SeverityWarning)

	fmt.Fprintf(&b, "**%s**\n", Verdict(r))
	return b.String()
}

// Render writes markdown through glamour when tty is set, raw otherwise.
// Rendering failures fall back to the raw text.
func Render(w io.Writer, md string, tty bool) error {
	if tty {
		if out, err := glamour.Render(md, "dark"); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err := io.WriteString(w, md)
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
