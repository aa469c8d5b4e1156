// Package progress provides CLI progress indicators for batch operations
// (import, export, convert, vacuum). Output goes to stderr so stdout stays
// clean for piping, and nothing is drawn unless stderr is a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// minItems is the minimum number of items before showing progress.
const minItems = 5

// clearWidth is how many columns Done and Stop blank out.
const clearWidth = 60

// Progress tracks and displays counted progress.
type Progress struct {
	w       io.Writer
	label   string
	total   int
	current int
	isTTY   bool
}

// New creates a progress reporter that writes to stderr.
// If total is less than minItems, updates are suppressed.
func New(label string, total int) *Progress {
	return NewTo(os.Stderr, label, total, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewTo creates a progress reporter on w. tty selects in-place updates.
func NewTo(w io.Writer, label string, total int, tty bool) *Progress {
	return &Progress{w: w, label: label, total: total, isTTY: tty}
}

// Increment advances the counter by one and redraws.
func (p *Progress) Increment() {
	p.current++
	p.Print()
}

// Print writes the current progress, overwriting the line in place.
func (p *Progress) Print() {
	if !p.isTTY || p.total < minItems {
		return
	}
	pct := (p.current * 100) / p.total
	fmt.Fprintf(p.w, "\r%s... %d/%d (%d%%)", p.label, p.current, p.total, pct)
}

// Done clears the progress line to make way for final output.
func (p *Progress) Done() {
	if !p.isTTY || p.total < minItems {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", clearWidth)+"\r")
}

// Spinner shows that work of unknown length is in progress.
type Spinner struct {
	w       io.Writer
	label   string
	frame   int
	isTTY   bool
	frames  []string
	running bool
}

// NewSpinner creates a spinner that writes to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		w:      os.Stderr,
		label:  label,
		isTTY:  term.IsTerminal(int(os.Stderr.Fd())),
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start displays the spinner.
func (s *Spinner) Start() {
	if !s.isTTY {
		return
	}
	s.running = true
	fmt.Fprintf(s.w, "%s %s...", s.frames[0], s.label)
}

// Tick advances the animation by one frame.
func (s *Spinner) Tick() {
	if !s.isTTY || !s.running {
		return
	}
	s.frame = (s.frame + 1) % len(s.frames)
	fmt.Fprintf(s.w, "\r%s %s...", s.frames[s.frame], s.label)
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	if !s.isTTY || !s.running {
		return
	}
	s.running = false
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", clearWidth)+"\r")
}
