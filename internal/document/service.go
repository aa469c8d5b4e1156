// Package document implements the ledger service: the normalise, validate,
// publish pipeline on top of a store.SQLiteStore, plus the read, retire and
// diff operations commands and MCP tools use.
package document

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
)

// DefaultAuthor is recorded when a publish names no author.
const DefaultAuthor = "unknown"

var _ service.Service = (*Service)(nil)

// Service provides ledger operations backed by a Store.
type Service struct {
	store  *store.SQLiteStore
	dbPath string
	cfg    *config.Config
	extCtx extension.Context // for firing events to extensions
}

// New opens the ledger at dbPath, or discovers one by walking up from the
// working directory when dbPath is empty. Returns repo.ErrNotInitialised if
// none is found.
func New(dbPath string) (*Service, error) {
	if dbPath == "" {
		var err error
		if dbPath, err = repo.Discover(""); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err // config.Load provides detailed, actionable error messages
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Service{store: s, dbPath: dbPath, cfg: cfg}, nil
}

// Init creates a new ledger. See repo.Init.
//
// Note: Init does not write config. Config is managed separately via
// "sopstory config".
func Init(opts repo.InitOptions) (string, error) {
	return repo.Init(opts)
}

// Close checkpoints the WAL and closes the database connection.
func (s *Service) Close() error {
	if err := s.store.Checkpoint(context.Background()); err != nil {
		log.Event("service:close", "checkpoint").
			Detail("error", err.Error()).
			Write(err)
	}
	return s.store.Close()
}

// Config returns the configuration the service was opened with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// ReloadConfig reloads configuration from disk. Call this after modifying
// config so the service uses the new settings.
func (s *Service) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// SetConfig replaces the configuration, for callers that load it from an
// explicit file.
func (s *Service) SetConfig(cfg *config.Config) {
	s.cfg = cfg
}

// SetExtensionContext sets the extension context for firing events.
// Called from cmd/root.go after creating the context.
func (s *Service) SetExtensionContext(ctx extension.Context) {
	s.extCtx = ctx
}

// fireEvent notifies all registered extension event handlers.
//
// Design: Handler errors are logged but not propagated. Events are
// notifications, not veto points; the version is already committed.
func (s *Service) fireEvent(e extension.Event) {
	if s.extCtx == nil {
		return
	}
	for _, ext := range extension.All() {
		if h, ok := ext.(extension.EventHandler); ok {
			if err := h.HandleEvent(s.extCtx, e); err != nil {
				log.Event("event:error", "error").
					Story(e.EventStory()).
					Detail("ext", ext.Name()).
					Detail("event", string(e.EventType())).
					Write(err)
			}
		}
	}
}

// DB returns the underlying database connection for extensions.
func (s *Service) DB() *sql.DB {
	return s.store.DB()
}

// DBPath returns the path to the ledger file.
func (s *Service) DBPath() string {
	return s.dbPath
}

// Tx runs a function within a database transaction.
//
// We always defer Rollback and call Commit at the end. Rollback on a
// committed transaction is a no-op, so this cleans up on error, on panic and
// on a failed commit alike.
func (s *Service) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return fmt.Errorf("transaction rolled back: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
