// read.go implements ledger queries.
//
// Separated from write.go because reads dominate: listings, cat, history and
// every MCP lookup go through here.
//
// Design: Listing queries select metadata with length(content) instead of the
// content itself, so `ls` over many large stories stays cheap.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Latest retrieves the highest version of a story.
func (s *SQLiteStore) Latest(ctx context.Context, story string, includeDeleted bool) (*Version, error) {
	query := `SELECT ` + versionColumns + ` FROM stories WHERE story = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY version DESC LIMIT 1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, story))
}

// Version retrieves a specific version of a story, retired or not.
func (s *SQLiteStore) Version(ctx context.Context, story string, version int) (*Version, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM stories WHERE story = ? AND version = ?`, story, version))
}

// ByKey retrieves a version by its unique key.
func (s *SQLiteStore) ByKey(ctx context.Context, key string) (*Version, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM stories WHERE key = ?`, key))
}

// List returns the latest version of each story whose id starts with prefix,
// ordered by story id.
func (s *SQLiteStore) List(ctx context.Context, prefix string, includeDeleted bool) ([]Meta, error) {
	query := `SELECT s.key, s.story, s.title, s.digest, s.steps, s.warnings, s.version,
			s.author, s.message, s.created_at, s.deleted_at, length(s.content)
		FROM stories s
		WHERE s.version = (SELECT MAX(version) FROM stories WHERE story = s.story)`
	var args []any
	if !includeDeleted {
		query += ` AND s.deleted_at IS NULL`
	}
	if prefix != "" {
		query += ` AND s.story LIKE ?`
		args = append(args, prefix+"%")
	}
	query += ` ORDER BY s.story`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		var msg sql.NullString
		var del sql.NullInt64
		if err := rows.Scan(&m.Key, &m.Story, &m.Title, &m.Digest, &m.Steps, &m.Warnings, &m.Version,
			&m.Author, &msg, &m.CreatedAt, &del, &m.Size); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		if msg.Valid {
			m.Message = msg.String
		}
		if del.Valid {
			m.DeletedAt = &del.Int64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// History returns all versions of a story in descending order (newest first).
// The limit parameter prevents unbounded queries; 0 means no limit.
func (s *SQLiteStore) History(ctx context.Context, story string, limit int, includeDeleted bool) ([]Version, error) {
	query := `SELECT ` + versionColumns + ` FROM stories WHERE story = ?`
	args := []any{story}

	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY version DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", story, err)
	}
	defer rows.Close()

	return s.scanMany(rows)
}

// Exists checks if an active story exists.
func (s *SQLiteStore) Exists(ctx context.Context, story string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM stories WHERE story = ? AND deleted_at IS NULL LIMIT 1`, story).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", story, err)
	}
	return true, nil
}

// Count returns the number of distinct active stories matching a prefix.
// Counts stories, not versions.
func (s *SQLiteStore) Count(ctx context.Context, prefix string) (int64, error) {
	query := `SELECT COUNT(DISTINCT story) FROM stories WHERE deleted_at IS NULL`
	var args []any

	if prefix != "" {
		query += ` AND story LIKE ?`
		args = append(args, prefix+"%")
	}

	var count int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// scanner abstracts sql.Row and sql.Rows, enabling a single scan function
// to handle both single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// versionColumns is the column list scanVersion expects.
const versionColumns = `id, key, story, title, content, digest, steps, warnings, version, author, message, created_at, deleted_at`

// scanVersion extracts a Version from a database row, handling nullable fields.
func scanVersion(sc scanner) (Version, error) {
	var v Version
	var msg sql.NullString
	var del sql.NullInt64

	err := sc.Scan(&v.ID, &v.Key, &v.Story, &v.Title, &v.Content, &v.Digest, &v.Steps, &v.Warnings,
		&v.Version, &v.Author, &msg, &v.CreatedAt, &del)
	if err != nil {
		return v, err
	}

	if msg.Valid {
		v.Message = msg.String
	}
	if del.Valid {
		v.DeletedAt = &del.Int64
	}
	return v, nil
}

// scanOne converts sql.ErrNoRows to ErrNotFound for consistent error handling.
func (s *SQLiteStore) scanOne(row *sql.Row) (*Version, error) {
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan version: %w", err)
	}
	return &v, nil
}

// scanMany iterates over query results, collecting versions into a slice.
func (s *SQLiteStore) scanMany(rows *sql.Rows) ([]Version, error) {
	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
