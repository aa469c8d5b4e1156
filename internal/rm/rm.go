// Package rm retires and restores published stories.
//
// Retirement is soft: the story leaves listings and cannot be republished,
// but every version stays in the ledger until vacuum removes it. Restore
// undoes a retirement.
package rm

import (
	"context"
	"fmt"
	"io"

	"github.com/jpl-au/sopstory/internal/service"
)

// Options configures a retire or restore operation.
type Options struct {
	Prefix bool // Treat the argument as an id prefix and act on every match
}

// Result contains the outcome of a retire or restore operation.
type Result struct {
	Target  string   `json:"target"`
	Stories []string `json:"stories"`
}

// Run retires one story, or every active story whose id starts with target
// when opts.Prefix is set.
func Run(ctx context.Context, w io.Writer, svc service.Service, target string, opts Options) (Result, error) {
	result := Result{Target: target, Stories: []string{}}

	ids := []string{target}
	if opts.Prefix {
		metas, err := svc.List(ctx, target, false)
		if err != nil {
			return result, err
		}
		ids = ids[:0]
		for _, m := range metas {
			ids = append(ids, m.Story)
		}
		if len(ids) == 0 {
			fmt.Fprintf(w, "No stories found with prefix %s\n", target)
			return result, nil
		}
	}

	for _, id := range ids {
		if err := svc.Delete(ctx, id); err != nil {
			return result, err
		}
		result.Stories = append(result.Stories, id)
		fmt.Fprintf(w, "Retired %s\n", id)
	}
	return result, nil
}

// Restore reactivates a retired story.
func Restore(ctx context.Context, w io.Writer, svc service.Service, id string) (Result, error) {
	result := Result{Target: id, Stories: []string{}}
	if err := svc.Restore(ctx, id); err != nil {
		return result, err
	}
	result.Stories = append(result.Stories, id)
	fmt.Fprintf(w, "Restored %s\n", id)
	return result, nil
}
