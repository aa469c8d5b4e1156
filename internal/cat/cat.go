// Package cat prints a published story.
//
// Stored content is the canonical JSON encoding, one field per line, so
// line numbers are stable across versions and match diff output. The
// --steps view prints the step graph instead of the raw JSON.
package cat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
)

// minLineNumWidth is the minimum column width for line numbers.
const minLineNumWidth = 6

// Options configures a cat operation.
type Options struct {
	Version        int  // Specific version to read (0 = latest)
	IncludeDeleted bool // Allow reading retired stories
	LineNumbers    bool // Prefix each line with its number
	Steps          bool // Print the step graph instead of JSON
}

// Result contains the outcome of a cat operation.
type Result struct {
	Version *store.Version
}

// Run reads a story version and writes it to w. target may be a story id
// or a version key.
func Run(ctx context.Context, w io.Writer, svc service.Service, target string, opts Options) (Result, error) {
	var result Result
	var v *store.Version
	var err error

	if opts.Version > 0 {
		v, err = svc.Version(ctx, target, opts.Version)
	} else {
		v, err = svc.Resolve(ctx, target, opts.IncludeDeleted)
	}
	if err != nil {
		return result, err
	}
	result.Version = v

	if opts.Steps {
		d, err := svc.Document(v)
		if err != nil {
			return result, err
		}
		return result, Steps(w, d)
	}
	if !opts.LineNumbers {
		fmt.Fprint(w, v.Content)
		return result, nil
	}
	return result, numbered(w, v.Content)
}

// Steps prints one line per step with its outgoing transitions, marking the
// start step and terminal steps.
func Steps(w io.Writer, d *story.Document) error {
	for _, s := range d.Steps {
		mark := "  "
		if s.ID == d.StartID {
			mark = "> "
		}
		var targets []string
		for _, t := range s.Transitions {
			label := t.To
			if t.Label != "" && t.Label != t.To {
				label = t.To + " (" + t.Label + ")"
			}
			targets = append(targets, label)
		}
		next := "[end]"
		if len(targets) > 0 {
			next = "-> " + strings.Join(targets, ", ")
		}
		if _, err := fmt.Fprintf(w, "%s%s  %s  %s\n", mark, s.ID, s.Title, next); err != nil {
			return err
		}
	}
	return nil
}

func numbered(w io.Writer, content string) error {
	total := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		total++
	}
	width := max(len(strconv.Itoa(total)), minLineNumWidth)

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		fmt.Fprintf(w, "%*d\t%s\n", width, n, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading content: %w", err)
	}
	return nil
}
