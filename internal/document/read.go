// read.go implements ledger retrieval and diff for the Service layer.
//
// Separated from service.go to isolate read-only operations.
//
// Design: Story ids go to the store as given; the store validates them at
// its boundary. Lookups that need two rows run concurrently, since SQLite in
// WAL mode serves parallel readers.

package document

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
)

// keyLen is the length of a version key.
const keyLen = 8

// Latest retrieves the latest version of a story.
func (s *Service) Latest(ctx context.Context, id string, includeDeleted bool) (*store.Version, error) {
	return s.store.Latest(ctx, id, includeDeleted)
}

// Version retrieves a specific version of a story.
func (s *Service) Version(ctx context.Context, id string, ver int) (*store.Version, error) {
	return s.store.Version(ctx, id, ver)
}

// ByKey retrieves a version by its unique 8-char key.
func (s *Service) ByKey(ctx context.Context, key string) (*store.Version, error) {
	return s.store.ByKey(ctx, key)
}

// Resolve returns a version by story id or key.
//
// Users see keys in `sopstory history` output and pass them back. An
// 8-character input could be either, so both lookups run and the story id
// takes precedence: a story named that way is what the user meant.
func (s *Service) Resolve(ctx context.Context, idOrKey string, includeDeleted bool) (*store.Version, error) {
	if len(idOrKey) != keyLen {
		return s.Latest(ctx, idOrKey, includeDeleted)
	}

	var byID, byKey *store.Version
	var idErr, keyErr error

	var wg sync.WaitGroup
	wg.Go(func() {
		byID, idErr = s.Latest(ctx, idOrKey, includeDeleted)
	})
	wg.Go(func() {
		byKey, keyErr = s.ByKey(ctx, idOrKey)
	})
	wg.Wait()

	if idErr == nil {
		return byID, nil
	}
	if keyErr == nil {
		return byKey, nil
	}
	return nil, idErr
}

// Document decodes the stored content of a version.
func (s *Service) Document(v *store.Version) (*story.Document, error) {
	d, err := story.Decode([]byte(v.Content))
	if err != nil {
		return nil, fmt.Errorf("decode %s v%d: %w", v.Story, v.Version, err)
	}
	return d, nil
}

// List returns the latest version of every story matching a prefix.
func (s *Service) List(ctx context.Context, prefix string, includeDeleted bool) ([]store.Meta, error) {
	return s.store.List(ctx, prefix, includeDeleted)
}

// History returns version history for a story.
func (s *Service) History(ctx context.Context, id string, limit int, includeDeleted bool) ([]store.Version, error) {
	return s.store.History(ctx, id, limit, includeDeleted)
}

// Exists checks if an active story exists without fetching content.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.store.Exists(ctx, id)
}

// Count returns the number of active stories matching a prefix.
func (s *Service) Count(ctx context.Context, prefix string) (int64, error) {
	return s.store.Count(ctx, prefix)
}

// Diff compares two versions of a story, the latest against a working file,
// or the latest against the one before it.
func (s *Service) Diff(ctx context.Context, id string, opts diff.Options) (diff.Result, error) {
	var (
		o, n   *store.Version
		ol, nl string
		err    error
	)
	switch {
	case opts.File != "":
		return s.diffWithFile(ctx, id, opts)
	case opts.Version1 > 0 && opts.Version2 > 0:
		o, n, err = s.diffVersions(ctx, id, opts)
	default:
		o, n, err = s.diffPrevious(ctx, id, opts)
	}
	if err != nil {
		return diff.Result{}, err
	}
	ol = id + " v" + strconv.Itoa(o.Version)
	nl = id + " v" + strconv.Itoa(n.Version)

	od, err := s.Document(o)
	if err != nil {
		return diff.Result{}, err
	}
	nd, err := s.Document(n)
	if err != nil {
		return diff.Result{}, err
	}
	return diff.Documents(od, nd, ol, nl)
}

// diffWithFile compares the latest version against a working file after
// normalising the file the way publish would.
func (s *Service) diffWithFile(ctx context.Context, id string, opts diff.Options) (diff.Result, error) {
	v, err := s.store.Latest(ctx, id, opts.IncludeDeleted)
	if err != nil {
		return diff.Result{}, fmt.Errorf("reading %s: %w", id, err)
	}
	old, err := s.Document(v)
	if err != nil {
		return diff.Result{}, err
	}
	d, err := story.Load(opts.File)
	if err != nil {
		return diff.Result{}, err
	}
	story.Normalise(d, s.cfg.PathOptions(""))
	return diff.Documents(old, d, id+" (v"+strconv.Itoa(v.Version)+")", opts.File)
}

func (s *Service) diffVersions(ctx context.Context, id string, opts diff.Options) (*store.Version, *store.Version, error) {
	var v1, v2 *store.Version
	var err1, err2 error

	var wg sync.WaitGroup
	wg.Go(func() {
		v1, err1 = s.store.Version(ctx, id, opts.Version1)
	})
	wg.Go(func() {
		v2, err2 = s.store.Version(ctx, id, opts.Version2)
	})
	wg.Wait()

	if err1 != nil {
		return nil, nil, fmt.Errorf("reading %s v%d: %w", id, opts.Version1, err1)
	}
	if err2 != nil {
		return nil, nil, fmt.Errorf("reading %s v%d: %w", id, opts.Version2, err2)
	}
	return v1, v2, nil
}

func (s *Service) diffPrevious(ctx context.Context, id string, opts diff.Options) (*store.Version, *store.Version, error) {
	vs, err := s.store.History(ctx, id, 2, opts.IncludeDeleted)
	if err != nil {
		return nil, nil, err
	}
	if len(vs) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if len(vs) < 2 {
		return nil, nil, fmt.Errorf("only one version exists for %s", id)
	}
	return &vs[1], &vs[0], nil
}
