// Package ls lists published stories with sorting and filtering.
//
// Listings read store.Meta rows only, so a ledger with large stories lists
// without loading any content. The long format adds steps, warnings, size
// and author in a table.
package ls

import (
	"cmp"
	"context"
	"io"
	"slices"

	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
)

// SortField specifies how to sort results.
type SortField string

const (
	SortNone SortField = ""
	SortName SortField = "name"
	SortTime SortField = "time" // newest first
)

// Options configures a list operation.
type Options struct {
	Prefix      string    // Filter by story id prefix
	IncludeAll  bool      // Include retired stories
	DeletedOnly bool      // Show only retired stories
	Warnings    bool      // Only stories published with warnings
	Long        bool      // Long format with metadata
	Sort        SortField // Sort field (name, time)
	Reverse     bool      // Reverse sort order
}

// Result contains the outcome of a list operation.
type Result struct {
	Stories []store.Meta
}

// Count returns the number of stories in the result.
func (r Result) Count() int { return len(r.Stories) }

// ToJSON converts the result to its API representation.
func (r Result) ToJSON() []store.MetaJSON {
	out := make([]store.MetaJSON, len(r.Stories))
	for i := range r.Stories {
		out[i] = r.Stories[i].ToJSON()
	}
	return out
}

// Run lists stories and writes formatted output to w.
func Run(ctx context.Context, w io.Writer, svc service.Service, opts Options) (Result, error) {
	var result Result

	metas, err := svc.List(ctx, opts.Prefix, opts.IncludeAll || opts.DeletedOnly)
	if err != nil {
		return result, err
	}

	metas = slices.DeleteFunc(metas, func(m store.Meta) bool {
		if opts.DeletedOnly && m.DeletedAt == nil {
			return true
		}
		return opts.Warnings && m.Warnings == 0
	})
	sortMetas(metas, opts.Sort, opts.Reverse)
	result.Stories = metas

	if opts.Long {
		return result, format.Long(w, metas)
	}
	return result, format.List(w, metas)
}

// sortMetas orders stories in place. Time sorting shows newest first; ties
// fall back to the story id so output is stable across runs.
func sortMetas(metas []store.Meta, field SortField, reverse bool) {
	var less func(a, b store.Meta) int
	switch field {
	case SortName:
		less = func(a, b store.Meta) int { return cmp.Compare(a.Story, b.Story) }
	case SortTime:
		less = func(a, b store.Meta) int {
			if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.Story, b.Story)
		}
	default:
		return
	}
	slices.SortStableFunc(metas, func(a, b store.Meta) int {
		if reverse {
			return less(b, a)
		}
		return less(a, b)
	})
}
