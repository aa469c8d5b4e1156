// Package exists answers whether a canonical reference resolves to a real
// backing resource.
//
// The validator only ever sees the Checker interface. Absence of a resource
// is a normal outcome, reported as (false, nil); an error means the checker
// itself could not answer (permission denied, network failure, cancelled
// context).
package exists

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// Checker resolves ref under root and reports whether it exists.
type Checker interface {
	Exists(ctx context.Context, ref, root string) (bool, error)
}

// Func adapts a plain function to Checker.
type Func func(ctx context.Context, ref, root string) (bool, error)

// Exists calls f.
func (f Func) Exists(ctx context.Context, ref, root string) (bool, error) {
	return f(ctx, ref, root)
}

// Dir checks references against the local filesystem. Only regular files
// count; a directory at the resolved path is reported missing.
type Dir struct{}

// Exists resolves ref under root and stats it.
func (Dir) Exists(ctx context.Context, ref, root string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p := Resolve(ref, root)
	if p == "" {
		return false, nil
	}
	info, err := os.Stat(filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Resolve joins a canonical reference onto root as a slash path. Leading
// slashes and "./" are dropped from ref so a rooted reference still lands
// under root. Ascent segments are resolved lexically against root.
func Resolve(ref, root string) string {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "\\", "/")
	ref = strings.TrimLeft(ref, "/")
	if ref == "" {
		return ""
	}
	root = strings.ReplaceAll(strings.TrimSpace(root), "\\", "/")
	if root == "" {
		root = "."
	}
	return filepath.ToSlash(filepath.Join(root, ref))
}

// Cached memoises another Checker. Errors are not cached.
type Cached struct {
	Checker Checker

	mu   sync.Mutex
	seen map[string]bool
}

// NewCached wraps c.
func NewCached(c Checker) *Cached {
	return &Cached{Checker: c, seen: map[string]bool{}}
}

// Exists answers from the cache when the same (root, ref) pair was checked
// before.
func (c *Cached) Exists(ctx context.Context, ref, root string) (bool, error) {
	key := root + "\x00" + ref
	c.mu.Lock()
	if ok, hit := c.seen[key]; hit {
		c.mu.Unlock()
		return ok, nil
	}
	c.mu.Unlock()

	ok, err := c.Checker.Exists(ctx, ref, root)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	c.seen[key] = ok
	c.mu.Unlock()
	return ok, nil
}

// Len reports the number of cached answers.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
