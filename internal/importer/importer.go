// Package importer publishes a directory of story files in one run.
//
// Each file goes through the same normalise, validate and publish pipeline
// as `sopstory publish`. A rejected story does not stop the run: its report
// is recorded and the next file is tried, so one broken story does not hold
// back a release of fifty.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jpl-au/sopstory/internal/progress"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/validate"
)

// Options configures an import.
type Options struct {
	Hidden     bool   // Include hidden files and directories
	DryRun     bool   // List the files without publishing
	CheckFiles bool   // Check referenced files before publishing
	Author     string // Author for published versions
	Msg        string // Message for published versions
}

// Status is the outcome for one file.
type Status string

const (
	StatusPublished Status = "published"
	StatusUnchanged Status = "unchanged"
	StatusRejected  Status = "rejected"
	StatusPending   Status = "pending" // dry run
)

// File is the outcome of importing one story file.
type File struct {
	Path    string `json:"path"`
	Story   string `json:"story,omitempty"`
	Version int    `json:"version,omitempty"`
	Status  Status `json:"status"`
	Errors  int    `json:"errors,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Result summarises an import.
type Result struct {
	Files     []File `json:"files"`
	Published int    `json:"published"`
	Rejected  int    `json:"rejected"`
}

// Run publishes src, a story file or a directory searched recursively for
// .json, .yaml and .yml files. Only failures to read the source or to reach
// the ledger are returned as errors.
func Run(ctx context.Context, w io.Writer, svc service.Service, src string, opts Options) (Result, error) {
	result := Result{Files: []File{}}

	info, err := os.Stat(src)
	if err != nil {
		return result, err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(src)
		if err != nil {
			return result, fmt.Errorf("reading %s: %w", src, err)
		}
		f, err := publish(ctx, svc, src, data, opts)
		if err != nil {
			return result, err
		}
		result.add(w, f)
		return result, nil
	}

	// os.Root keeps symlinks from leading the scan outside src.
	root, err := os.OpenRoot(src)
	if err != nil {
		return result, fmt.Errorf("opening source root: %w", err)
	}
	defer root.Close()

	files, err := scanRoot(root, "", opts.Hidden)
	if err != nil {
		return result, fmt.Errorf("scanning %s: %w", src, err)
	}

	prog := progress.New("Publishing", len(files))
	defer prog.Done()

	for _, rel := range files {
		path := filepath.Join(src, rel)
		data, err := root.ReadFile(rel)
		if err != nil {
			return result, fmt.Errorf("reading %s: %w", path, err)
		}
		f, err := publish(ctx, svc, path, data, opts)
		if err != nil {
			return result, err
		}
		result.add(w, f)
		prog.Increment()
	}
	return result, nil
}

func (r *Result) add(w io.Writer, f File) {
	r.Files = append(r.Files, f)
	switch f.Status {
	case StatusPublished:
		r.Published++
		fmt.Fprintf(w, "Published: %s -> %s v%d\n", f.Path, f.Story, f.Version)
	case StatusUnchanged:
		fmt.Fprintf(w, "Unchanged: %s (%s v%d)\n", f.Path, f.Story, f.Version)
	case StatusRejected:
		r.Rejected++
		fmt.Fprintf(w, "Rejected:  %s: %s\n", f.Path, f.Reason)
	case StatusPending:
		fmt.Fprintf(w, "Would publish: %s\n", f.Path)
	}
}

// publish runs one file through the pipeline. Validation failures and
// retired stories become rejected entries; anything else is returned.
func publish(ctx context.Context, svc service.Service, path string, data []byte, opts Options) (File, error) {
	f := File{Path: path}
	if opts.DryRun {
		f.Status = StatusPending
		return f, nil
	}

	out, err := svc.Publish(ctx, data, service.PublishOptions{
		CheckOptions: service.CheckOptions{Source: path, CheckFiles: opts.CheckFiles},
		Author:       opts.Author,
		Message:      opts.Msg,
	})
	if out != nil && out.Document != nil {
		f.Story = out.Document.ID
	}
	switch {
	case errors.Is(err, validate.ErrNotPublishable):
		f.Status = StatusRejected
		f.Errors = len(out.Report.Errors)
		f.Reason = out.Report.Errors[0]
		if f.Errors > 1 {
			f.Reason += fmt.Sprintf(" (and %d more)", f.Errors-1)
		}
		return f, nil
	case isRejection(err):
		f.Status = StatusRejected
		f.Reason = err.Error()
		return f, nil
	case err != nil:
		return f, fmt.Errorf("publishing %s: %w", path, err)
	}

	f.Version = out.Result.Version
	f.Status = StatusUnchanged
	if out.Result.Created {
		f.Status = StatusPublished
	}
	return f, nil
}

// isRejection reports whether a publish error concerns the story itself
// rather than the ledger.
func isRejection(err error) bool {
	for _, target := range []error{
		validate.ErrInvalidID, validate.ErrIDTooLong, validate.ErrContentTooLarge, store.ErrRetired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// scanRoot recursively finds story files within an os.Root, returning paths
// relative to the root in name order.
func scanRoot(root *os.Root, dir string, includeHidden bool) ([]string, error) {
	path := dir
	if path == "" {
		path = "."
	}
	f, err := root.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !includeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		rel := name
		if dir != "" {
			rel = filepath.Join(dir, name)
		}
		if entry.IsDir() {
			sub, err := scanRoot(root, rel, includeHidden)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json", ".yaml", ".yml":
			files = append(files, rel)
		}
	}
	return files, nil
}
