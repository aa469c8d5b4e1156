// Package exporter writes published stories back to the filesystem.
//
// Export is how a release directory is assembled from the ledger: every
// active story (or those under a prefix) is written as <id>.json with the
// exact bytes that were validated at publish time.
package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jpl-au/sopstory/internal/progress"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
)

// Options configures an export.
type Options struct {
	Prefix  string // Only stories whose id starts with Prefix
	Version int    // Specific version (single story only; 0 = latest)
	YAML    bool   // Write YAML instead of JSON
	Force   bool   // Overwrite existing files
}

// Result contains the outcome of an export.
type Result struct {
	Exported int      `json:"exported"`
	Paths    []string `json:"paths"`
}

// Run exports the story target to dst. An empty target exports every story
// matching opts.Prefix into the directory dst.
func Run(ctx context.Context, w io.Writer, svc service.Service, target, dst string, opts Options) (Result, error) {
	result := Result{Paths: []string{}}

	var versions []*store.Version
	if target != "" {
		v, err := resolve(ctx, svc, target, opts.Version)
		if err != nil {
			return result, err
		}
		versions = append(versions, v)
	} else {
		if opts.Version > 0 {
			return result, fmt.Errorf("--version needs a single story")
		}
		metas, err := svc.List(ctx, opts.Prefix, false)
		if err != nil {
			return result, err
		}
		if len(metas) == 0 {
			return result, fmt.Errorf("no stories found with prefix %q", opts.Prefix)
		}
		for _, m := range metas {
			v, err := svc.Latest(ctx, m.Story, false)
			if err != nil {
				return result, fmt.Errorf("reading %s: %w", m.Story, err)
			}
			versions = append(versions, v)
		}
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return result, fmt.Errorf("creating destination directory: %w", err)
	}
	// An id of ".." would name the parent; os.Root refuses it.
	root, err := os.OpenRoot(dst)
	if err != nil {
		return result, fmt.Errorf("opening destination root: %w", err)
	}
	defer root.Close()

	prog := progress.New("Exporting", len(versions))
	defer prog.Done()

	for _, v := range versions {
		name, data, err := render(svc, v, opts.YAML)
		if err != nil {
			return result, err
		}
		if !opts.Force {
			if _, err := root.Stat(name); err == nil {
				return result, fmt.Errorf("file exists: %s (use --force to overwrite)", filepath.Join(dst, name))
			}
		}
		if err := root.WriteFile(name, data, 0644); err != nil {
			return result, fmt.Errorf("writing %s: %w", name, err)
		}
		out := filepath.Join(dst, name)
		result.Paths = append(result.Paths, out)
		result.Exported++
		prog.Increment()
		fmt.Fprintf(w, "Exported: %s v%d -> %s\n", v.Story, v.Version, out)
	}
	return result, nil
}

func resolve(ctx context.Context, svc service.Service, target string, version int) (*store.Version, error) {
	if version > 0 {
		return svc.Version(ctx, target, version)
	}
	return svc.Resolve(ctx, target, false)
}

// render returns the file name and bytes for a version. JSON is the stored
// content unchanged.
func render(svc service.Service, v *store.Version, yaml bool) (string, []byte, error) {
	if !yaml {
		return v.Story + ".json", []byte(v.Content), nil
	}
	d, err := svc.Document(v)
	if err != nil {
		return "", nil, err
	}
	data, err := story.EncodeYAML(d)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", v.Story, err)
	}
	return v.Story + ".yaml", data, nil
}
