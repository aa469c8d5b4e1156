// afs.go checks references against any storage viant/afs can reach.
//
// Separated from exists.go because it pulls in the remote storage drivers.
// Roots are URLs (gs://bucket/site/outputs/players, s3://..., file://...);
// a plain local path is turned into a file:// URL first, so the same
// checker works for a checkout and for a published bucket.

package exists

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	// Register the Google Cloud Storage and S3 schemes.
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"
)

// AFS checks references through an afs.Service.
type AFS struct {
	fs afs.Service
}

// NewAFS returns a checker backed by the default afs service.
func NewAFS() *AFS {
	return &AFS{fs: afs.New()}
}

// Exists resolves ref under the root URL and asks the storage service.
// Directories are reported missing.
func (a *AFS) Exists(ctx context.Context, ref, root string) (bool, error) {
	u := a.URL(ref, root)
	if u == "" {
		return false, nil
	}
	ok, err := a.fs.Exists(ctx, u)
	if err != nil || !ok {
		return false, err
	}
	obj, err := a.fs.Object(ctx, u)
	if err != nil {
		// Exists said yes; a failing stat is a checker failure.
		return false, err
	}
	return !obj.IsDir(), nil
}

// URL returns the storage URL ref resolves to under root.
func (a *AFS) URL(ref, root string) string {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "\\", "/")
	ref = strings.TrimLeft(ref, "/")
	if ref == "" {
		return ""
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	if url.Scheme(root, "") == "" {
		if url.IsRelative(root) {
			if abs, err := filepath.Abs(root); err == nil {
				root = abs
			}
		}
		root = url.ToFileURL(root)
	}
	return joinURL(root, ref)
}

// joinURL appends ref to base, resolving "." and ".." segments against the
// base path. The scheme and host are never ascended past.
func joinURL(base, ref string) string {
	prefix, p := splitURL(base)
	segs := strings.Split(strings.Trim(p, "/"), "/")
	if len(segs) == 1 && segs[0] == "" {
		segs = nil
	}
	for _, s := range strings.Split(ref, "/") {
		switch s {
		case "", ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, s)
		}
	}
	return prefix + "/" + strings.Join(segs, "/")
}

// splitURL separates "scheme://host" from the path.
func splitURL(u string) (string, string) {
	i := strings.Index(u, "://")
	if i < 0 {
		return "", u
	}
	rest := u[i+3:]
	if u[:i] == "file" {
		return u[:i+3], rest
	}
	j := strings.Index(rest, "/")
	if j < 0 {
		return u, ""
	}
	return u[:i+3+j], rest[j:]
}

// Auto sends URL roots (gs://, s3://, file://) to an AFS checker and
// everything else to Dir. The AFS service is created on first use.
type Auto struct {
	mu     sync.Mutex
	remote *AFS
}

// Exists dispatches on the shape of root.
func (a *Auto) Exists(ctx context.Context, ref, root string) (bool, error) {
	if !strings.Contains(root, "://") {
		return Dir{}.Exists(ctx, ref, root)
	}
	a.mu.Lock()
	if a.remote == nil {
		a.remote = NewAFS()
	}
	remote := a.remote
	a.mu.Unlock()
	return remote.Exists(ctx, ref, root)
}
