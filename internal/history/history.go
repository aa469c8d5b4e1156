// Package history shows the version history of a published story.
//
// Each publish of changed content adds a version. The diff view shows the
// JSON and step-level changes between consecutive versions, which is how a
// reviewer sees what a republication actually changed.
package history

import (
	"context"
	"fmt"
	"io"

	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
)

// Options configures a history operation.
type Options struct {
	Limit          int  // Maximum versions to return (0 = all)
	IncludeDeleted bool // Include retired stories
	ShowDiff       bool // Show diffs between versions
	Colour         bool // Colourise diff output
}

// Result contains the outcome of a history operation.
type Result struct {
	Story    string
	Versions []store.Version
}

// ToJSON converts the versions to their API representation, without
// content.
func (r Result) ToJSON() []store.VersionJSON {
	out := make([]store.VersionJSON, len(r.Versions))
	for i := range r.Versions {
		out[i] = r.Versions[i].ToJSON(false)
	}
	return out
}

// Run retrieves story history and writes output to w. target may be a story
// id or a version key; a key shows the history of its story.
func Run(ctx context.Context, w io.Writer, svc service.Service, target string, opts Options) (Result, error) {
	var result Result

	v, err := svc.Resolve(ctx, target, opts.IncludeDeleted)
	if err != nil {
		return result, err
	}
	result.Story = v.Story

	// Diffs need a pair, so a diff view of one version asks for two.
	limit := opts.Limit
	if opts.ShowDiff && limit == 1 {
		limit = 2
	}
	vs, err := svc.History(ctx, v.Story, limit, opts.IncludeDeleted)
	if err != nil {
		return result, err
	}
	if len(vs) == 0 {
		return result, fmt.Errorf("no history found for %s", v.Story)
	}
	result.Versions = vs

	if opts.ShowDiff {
		return result, format.HistoryDiff(w, vs, opts.Colour)
	}
	return result, format.History(w, vs)
}
