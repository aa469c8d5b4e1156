// sqlite.go opens the ledger database and owns its schema and upkeep.
//
// This is the only file that imports the SQLite driver. The ledger is read
// by the MCP server while the CLI publishes, so connections run in WAL mode
// with a busy timeout; see pragmas.

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"embed"
	"encoding/base32"
	"fmt"
	"io/fs"
	"path"
	"strings"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

//go:embed sql/*.sql
var schemas embed.FS

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// pragmas are applied in order on every open. synchronous=NORMAL is safe
// under WAL; a crash can lose the last publish, never corrupt the file.
var pragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"busy_timeout", "5000"},
	{"synchronous", "NORMAL"},
}

// Open opens the ledger at path. The caller must Close it.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(`PRAGMA ` + p.name + `=` + p.value); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", p.name, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates the stories table and its indexes. Safe to repeat.
func (s *SQLiteStore) Init() error {
	return ExecEmbedded(s.db, schemas, "sql")
}

// Close releases the connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the connection for extensions with tables of their own.
// Extensions must not write to the stories table.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Checkpoint folds the WAL back into the database file and truncates it,
// leaving no -wal or -shm files behind after a clean exit.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}

// ExecEmbedded runs every .sql file directly under dir in fsys, in name
// order, each in its own transaction. Files must be idempotent
// (CREATE ... IF NOT EXISTS); extensions use this for their tables:
//
//	//go:embed sql/*.sql
//	var schemas embed.FS
//
//	func Migrate(db *sql.DB) error { return store.ExecEmbedded(db, schemas, "sql") }
func ExecEmbedded(db *sql.DB, fsys embed.FS, dir string) error {
	files, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list schema files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no schema files in %s", dir)
	}
	// fs.Glob returns names sorted, so 001_ runs before 002_.
	for _, f := range files {
		data, err := fsys.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if err := execFile(db, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", path.Base(f), err)
		}
	}
	return nil
}

func execFile(db *sql.DB, ddl string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(ddl); err != nil {
		return err
	}
	return tx.Commit()
}

// Tx runs fn in a transaction, committing when fn returns nil and rolling
// back otherwise.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// newKey returns a random 8-character lowercase base32 version key.
func newKey() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return strings.ToLower(base32.StdEncoding.EncodeToString(b)), nil
}
