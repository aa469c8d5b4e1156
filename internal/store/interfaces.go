// interfaces.go defines the storage abstraction for the publication ledger.
//
// Separated from the SQLite implementation to enable testing and potential
// alternative backends. The interfaces are granular (Reader, Writer,
// Maintainer) so consumers only depend on the capabilities they need.
//
// Design: Retiring a story is a soft delete. Versions are marked deleted and
// can be restored until Vacuum permanently purges them.

package store

import (
	"context"
	"database/sql"
	"time"
)

// Reader defines read-only ledger operations.
type Reader interface {
	// Latest retrieves the current version of a story. Use includeDeleted
	// to read retired stories.
	Latest(ctx context.Context, story string, includeDeleted bool) (*Version, error)

	// Version retrieves a specific historical version.
	Version(ctx context.Context, story string, version int) (*Version, error)

	// ByKey retrieves a version by its unique 8-char key.
	ByKey(ctx context.Context, key string) (*Version, error)

	// List returns the latest version of each story matching a prefix,
	// without content.
	List(ctx context.Context, prefix string, includeDeleted bool) ([]Meta, error)

	// History returns versions of a story, newest first.
	History(ctx context.Context, story string, limit int, includeDeleted bool) ([]Version, error)

	// Exists reports whether an active story exists.
	Exists(ctx context.Context, story string) (bool, error)

	// Count returns the number of active stories matching a prefix.
	Count(ctx context.Context, prefix string) (int64, error)
}

// Writer defines mutating ledger operations.
type Writer interface {
	// Publish appends a version unless content matches the latest one.
	Publish(ctx context.Context, story string, content []byte, opts PublishOptions) (*Result, error)

	// Delete retires every version of a story.
	Delete(ctx context.Context, story string) error

	// Restore reactivates a retired story.
	Restore(ctx context.Context, story string) error
}

// Maintainer defines housekeeping operations.
type Maintainer interface {
	// Vacuum permanently removes retired versions, optionally only those
	// retired longer than olderThan ago.
	Vacuum(ctx context.Context, olderThan *time.Duration, prefix string) (int64, error)

	// Checkpoint flushes the WAL into the main database file.
	Checkpoint(ctx context.Context) error
}

// Store combines every ledger capability with lifecycle management.
type Store interface {
	Reader
	Writer
	Maintainer

	Init() error
	Close() error
	DB() *sql.DB
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error
}
