// Package log provides the audit trail for sopstory operations.
// Entries are stored in ~/.sopstory/log/sopstory-log.db and record every
// CLI command and MCP tool invocation across projects: which story was
// validated or published, by whom, and with what outcome.
//
// # Fluent API
//
//	log.Event("story:validate", "validate").
//		Author(cmd.Author()).
//		Story(doc.ID).
//		File(p).
//		Findings(len(r.Errors), len(r.Warnings)).
//		Write(err)
//
// The source follows "{extension}:{command}" for CLI commands and
// "mcp:{tool}" for MCP tools.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g. "story:publish", "mcp:sopstory_validate"
	Author string
	Action string // verb: validate, normalise, publish, read, ...
	Story  string // story id the operation targets
	File   string // source or output file, when one is involved

	Version       int // input: version requested
	ResultVersion int // output: version created or read

	// Validation outcome, when the operation validated a document.
	Errors   int
	Warnings int

	Start int64 // unix time when Event was called
	End   int64 // unix time when Write was called

	Success bool
	Error   string
	Detail  map[string]any
}

// Builder constructs a log entry. Create with [Event], chain setters, finish
// with [Builder.Write].
type Builder struct {
	entry Entry
}

// Event starts an entry for an operation.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Author sets who performed the operation. CLI commands pass cmd.Author();
// MCP tools pass "mcp".
func (b *Builder) Author(author string) *Builder {
	b.entry.Author = author
	return b
}

// Story sets the story id the operation affects.
func (b *Builder) Story(id string) *Builder {
	b.entry.Story = id
	return b
}

// File sets the file the operation read or wrote.
func (b *Builder) File(path string) *Builder {
	b.entry.File = path
	return b
}

// Version sets the version the caller asked for.
func (b *Builder) Version(version int) *Builder {
	b.entry.Version = version
	return b
}

// ResultVersion sets the version created or read.
func (b *Builder) ResultVersion(version int) *Builder {
	b.entry.ResultVersion = version
	return b
}

// Findings records the error and warning counts of a validation report.
func (b *Builder) Findings(errors, warnings int) *Builder {
	b.entry.Errors = errors
	b.entry.Warnings = warnings
	return b
}

// Detail adds operation-specific data. Can be called repeatedly.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write records the entry, deriving success from err.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Callers may ignore the error; logging is best effort.
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent entries.
// dir should be the absolute path of the .sopstory directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. A no-op when the logger is not open.
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
