// context.go defines the Context interface for extension access to the
// ledger.
//
// Separated from extension.go to isolate dependency injection concerns.
// Extensions reach the ledger through the service interface and never touch
// the store directly.
//
// Design: Extensions receive Context during Init(), not at construction,
// because they register in init() before any ledger has been discovered.

package extension

import (
	"database/sql"

	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/service"
)

// Context provides extensions controlled access to the ledger.
type Context interface {
	// Service returns the ledger service.
	Service() service.Service

	// DB exposes the database for extensions needing their own tables.
	// Extensions must not modify the stories table.
	DB() *sql.DB

	// Config returns the configuration the ledger was opened with.
	Config() *config.Config
}

// extContext implements Context.
type extContext struct {
	svc service.Service
	db  *sql.DB
	cfg *config.Config
}

// NewContext creates a new extension context.
func NewContext(svc service.Service, db *sql.DB, cfg *config.Config) Context {
	return &extContext{svc: svc, db: db, cfg: cfg}
}

func (c *extContext) Service() service.Service { return c.svc }

func (c *extContext) DB() *sql.DB { return c.db }

func (c *extContext) Config() *config.Config { return c.cfg }
