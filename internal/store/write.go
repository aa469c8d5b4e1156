// write.go implements publication and retirement of stories.
//
// Separated from the read paths to isolate mutating operations. Publishing
// never updates in place - each change appends a version so the full
// history of a story survives.
//
// Design: The version number is computed as MAX(version)+1 and compared
// against the latest digest inside one transaction, so two concurrent
// publishes of the same content produce exactly one version.

package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/jpl-au/sopstory/internal/validate"
)

// Digest returns the hex BLAKE2b-256 digest of encoded story content.
func Digest(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Publish appends a new version of a story. When content is byte-identical
// to the latest version nothing is written and the latest version is
// reported with Created false. Publishing to a retired story returns
// ErrRetired.
func (s *SQLiteStore) Publish(ctx context.Context, story string, content []byte, opts PublishOptions) (*Result, error) {
	story, err := validate.ID(story)
	if err != nil {
		return nil, err
	}
	if err := validate.Content(content, opts.MaxContent); err != nil {
		return nil, err
	}
	digest := Digest(content)

	var res Result
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		var (
			key     string
			latest  int
			current string
			del     sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, `SELECT key, version, digest, deleted_at FROM stories
			WHERE story = ? ORDER BY version DESC LIMIT 1`, story).Scan(&key, &latest, &current, &del)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get latest version: %w", err)
		case del.Valid:
			return fmt.Errorf("%w: %s", ErrRetired, story)
		case current == digest:
			res = Result{Version: latest, Key: key, Digest: digest}
			return nil
		}

		id, err := newKey()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO stories
			(key, story, title, content, digest, steps, warnings, version, author, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, story, opts.Title, string(content), digest, opts.Steps, opts.Warnings,
			latest+1, opts.Author, opts.Message, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
		res = Result{Version: latest + 1, Key: id, Digest: digest, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete retires a story by stamping deleted_at on every version.
// Returns ErrNotFound if the story doesn't exist or is already retired.
func (s *SQLiteStore) Delete(ctx context.Context, story string) error {
	story, err := validate.ID(story)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `UPDATE stories SET deleted_at = ? WHERE story = ? AND deleted_at IS NULL`,
		time.Now().Unix(), story)
	if err != nil {
		return fmt.Errorf("delete %s: %w", story, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", story, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore reactivates a retired story by clearing deleted_at on every
// version. Returns ErrNotFound if there is nothing to restore.
func (s *SQLiteStore) Restore(ctx context.Context, story string) error {
	story, err := validate.ID(story)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `UPDATE stories SET deleted_at = NULL WHERE story = ? AND deleted_at IS NOT NULL`, story)
	if err != nil {
		return fmt.Errorf("restore %s: %w", story, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("restore %s: %w", story, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
