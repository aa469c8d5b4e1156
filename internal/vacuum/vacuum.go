// Package vacuum permanently removes retired stories from the ledger.
// Retired stories stay recoverable with restore until vacuum runs; this is
// the only operation that deletes published versions.
package vacuum

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jpl-au/sopstory/internal/progress"
	"github.com/jpl-au/sopstory/internal/service"
)

// Options configures vacuum scope.
type Options struct {
	OlderThan *time.Duration // Keep retirements newer than this
	Prefix    string         // Limit to story ids with this prefix
	DryRun    bool           // Preview without deleting
}

// Result reports what was (or would be) removed.
type Result struct {
	Deleted int      `json:"deleted"`           // Versions removed; stories in dry-run mode
	Stories []string `json:"stories,omitempty"` // Affected stories (dry-run mode)
}

// Run permanently removes retired stories. Use DryRun first to preview.
func Run(ctx context.Context, w io.Writer, svc service.Service, opts Options) (Result, error) {
	var result Result

	if opts.DryRun {
		return preview(ctx, w, svc, opts)
	}

	spin := progress.NewSpinner("Vacuuming")
	spin.Start()
	count, err := svc.Vacuum(ctx, opts.OlderThan, opts.Prefix)
	spin.Stop()
	if err != nil {
		return result, err
	}

	result.Deleted = int(count)
	if count == 0 {
		fmt.Fprintln(w, "No retired stories to vacuum")
	} else {
		fmt.Fprintf(w, "Vacuumed %d version(s)\n", count)
	}
	return result, nil
}

// preview lists the retired stories a vacuum with the same options would
// remove.
func preview(ctx context.Context, w io.Writer, svc service.Service, opts Options) (Result, error) {
	var result Result

	metas, err := svc.List(ctx, opts.Prefix, true)
	if err != nil {
		return result, err
	}

	var cutoff int64
	if opts.OlderThan != nil {
		cutoff = time.Now().Add(-*opts.OlderThan).Unix()
	}
	for _, m := range metas {
		if m.DeletedAt == nil {
			continue
		}
		if opts.OlderThan != nil && *m.DeletedAt >= cutoff {
			continue
		}
		fmt.Fprintf(w, "Would delete: %s (%d version(s), retired %s)\n",
			m.Story, m.Version, time.Unix(*m.DeletedAt, 0).Format("2006-01-02 15:04"))
		result.Stories = append(result.Stories, m.Story)
		result.Deleted++
	}

	if result.Deleted == 0 {
		fmt.Fprintln(w, "No retired stories to vacuum")
	} else {
		fmt.Fprintf(w, "\nWould delete %d story(ies)\n", result.Deleted)
	}
	return result, nil
}
