// Package revert republishes an earlier version of a story.
//
// Revert moves forward: the old content becomes a new version, so the
// ledger shows when the revert happened and a revert can itself be
// reverted. The old content passes through validation again before it is
// stored, because referenced files may have changed since.
package revert

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
)

// ErrVersionRequired is returned when a story id is given without a
// version.
var ErrVersionRequired = errors.New("version required")

// Options configures a revert operation.
type Options struct {
	Author     string // Who is performing the revert
	Message    string // Custom message (defaults to "Revert to vN")
	CheckFiles bool   // Check referenced files before storing
}

// Result contains the outcome of a revert operation.
type Result struct {
	Story      string `json:"story"`
	RevertedTo int    `json:"reverted_to"`
	NewVersion int    `json:"new_version"`
	Key        string `json:"key"`
	Created    bool   `json:"created"`
	Author     string `json:"author"`
	Message    string `json:"message"`
}

// Run reverts a story to an earlier version. target is a version key, or a
// story id together with version.
func Run(ctx context.Context, w io.Writer, svc service.Service, target string, version int, opts Options) (Result, error) {
	var result Result

	old, err := resolve(ctx, svc, target, version)
	if err != nil {
		return result, err
	}

	message := opts.Message
	if message == "" {
		message = fmt.Sprintf("Revert to v%d", old.Version)
	}

	// The stored content is already canonical; re-normalising could only
	// change it if the path configuration moved since.
	out, err := svc.Publish(ctx, []byte(old.Content), service.PublishOptions{
		CheckOptions: service.CheckOptions{
			Source:     old.Story + ".json",
			CheckFiles: opts.CheckFiles,
			SkipNormal: true,
		},
		Author:  opts.Author,
		Message: message,
	})
	if err != nil {
		if errors.Is(err, store.ErrRetired) {
			return result, fmt.Errorf("%s is retired (use 'sopstory restore %s' first): %w", old.Story, old.Story, err)
		}
		return result, err
	}

	result = Result{
		Story:      old.Story,
		RevertedTo: old.Version,
		NewVersion: out.Result.Version,
		Key:        out.Result.Key,
		Created:    out.Result.Created,
		Author:     opts.Author,
		Message:    message,
	}
	if !out.Result.Created {
		fmt.Fprintf(w, "%s v%d already matches v%d, nothing to revert\n", old.Story, out.Result.Version, old.Version)
		return result, nil
	}
	fmt.Fprintf(w, "Reverted %s to v%d (now v%d)\n", old.Story, old.Version, out.Result.Version)
	return result, nil
}

func resolve(ctx context.Context, svc service.Service, target string, version int) (*store.Version, error) {
	if version > 0 {
		v, err := svc.Version(ctx, target, version)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("version %d not found for %s: %w", version, target, err)
		}
		return v, err
	}
	v, err := svc.ByKey(ctx, target)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if ok, _ := svc.Exists(ctx, target); ok {
		return nil, fmt.Errorf("%w: sopstory revert %s <version>", ErrVersionRequired, target)
	}
	return nil, fmt.Errorf("not found: %s: %w", target, store.ErrNotFound)
}
