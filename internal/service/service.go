// Package service defines the shared interface for ledger operations.
// Commands, extensions and the MCP server depend on this interface rather
// than on the concrete implementation in internal/document.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/validate"
)

// Service defines all ledger operations.
//
// Obtain one with document.New and always call Close when done:
//
//	svc, err := document.New("")
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//	v, err := svc.Latest(ctx, "SOP-7", false)
type Service interface {
	// Close checkpoints the WAL and releases database resources.
	Close() error

	// Config returns the configuration the service was opened with.
	Config() *config.Config

	// Latest returns the most recent version of a story.
	// Retired stories yield store.ErrNotFound unless includeDeleted is set.
	Latest(ctx context.Context, id string, includeDeleted bool) (*store.Version, error)

	// Version returns a specific version of a story.
	Version(ctx context.Context, id string, version int) (*store.Version, error)

	// ByKey returns the version with the given 8-char key.
	ByKey(ctx context.Context, key string) (*store.Version, error)

	// Resolve returns a version by story id or key. A story id yields the
	// latest version; a key yields exactly that version.
	Resolve(ctx context.Context, idOrKey string, includeDeleted bool) (*store.Version, error)

	// Document decodes the stored content of a version.
	Document(v *store.Version) (*story.Document, error)

	// List returns the latest version of every story whose id starts with
	// prefix.
	List(ctx context.Context, prefix string, includeDeleted bool) ([]store.Meta, error)

	// History returns versions of a story, newest first. limit 0 means all.
	History(ctx context.Context, id string, limit int, includeDeleted bool) ([]store.Version, error)

	// Exists reports whether an active story exists.
	Exists(ctx context.Context, id string) (bool, error)

	// Count returns the number of active stories.
	Count(ctx context.Context, prefix string) (int64, error)

	// Check normalises and validates a document without storing it.
	Check(ctx context.Context, data []byte, opts CheckOptions) (*Outcome, error)

	// Publish normalises, validates and stores a document. Nothing is
	// stored when the report has errors; the returned error then wraps
	// validate.ErrNotPublishable and the Outcome still carries the report.
	Publish(ctx context.Context, data []byte, opts PublishOptions) (*Outcome, error)

	// Delete retires a story. History is kept.
	Delete(ctx context.Context, id string) error

	// Restore reactivates a retired story.
	Restore(ctx context.Context, id string) error

	// Diff compares two versions, or a working file against the latest.
	Diff(ctx context.Context, id string, opts diff.Options) (diff.Result, error)

	// Vacuum permanently removes retired stories.
	Vacuum(ctx context.Context, olderThan *time.Duration, prefix string) (int64, error)

	// Checkpoint flushes the WAL into the main database file.
	Checkpoint(ctx context.Context) error

	// DB exposes the database for extensions with their own tables.
	DB() *sql.DB

	// Tx runs fn inside a transaction.
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// CheckOptions tunes a single normalise and validate run. Zero values fall
// back to configuration.
type CheckOptions struct {
	Source       string // file name, for reports and the audit log
	Base         string // ascent prefix; empty derives it from Output or config
	Output       string // player output path the base is derived from
	CheckFiles   bool   // force existence checking on
	Reachability bool   // force unreachable-step warnings on
	SkipNormal   bool   // validate the document as given
}

// PublishOptions configures Publish.
type PublishOptions struct {
	CheckOptions
	Author  string
	Message string
}

// Outcome is the result of a check or publish run.
type Outcome struct {
	Report   *validate.Report
	Document *story.Document // nil when the document could not be modelled
	Changes  []story.Change  // reference rewrites applied
	Content  []byte          // canonical encoding of Document
	Result   *store.Result   // set when Publish stored (or matched) a version
}
