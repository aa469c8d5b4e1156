// Package tag stores free-form labels on published stories ("approved",
// "site-north", "needs-review"). Labels live in their own table beside the
// ledger and are keyed by story id, so every version of a story shares them.
package tag

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jpl-au/sopstory/internal/store"
)

//go:embed sql/*.sql
var schemas embed.FS

// MaxLen is the longest tag accepted.
const MaxLen = 64

var (
	// ErrInvalidTag is returned for empty, overlong or whitespace-bearing tags.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrNoStory is returned when tagging a story that was never published.
	ErrNoStory = errors.New("story not published")
)

// Count is a tag with the number of stories carrying it.
type Count struct {
	Tag     string `json:"tag"`
	Stories int    `json:"stories"`
}

// Store reads and writes story tags.
type Store struct {
	db *sql.DB
}

// Migrate creates the tag table if it does not exist.
func Migrate(db *sql.DB) error {
	return store.ExecEmbedded(db, schemas, "sql")
}

// New returns a Store over an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Normalise lowercases and trims a tag and checks it is usable.
func Normalise(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTag)
	}
	if len(t) > MaxLen {
		return "", fmt.Errorf("%w: %q longer than %d", ErrInvalidTag, t, MaxLen)
	}
	if strings.IndexFunc(t, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidTag, t)
	}
	return t, nil
}

// Add attaches tags to a story. Tags already present are left as they are.
// The story must have at least one version in the ledger, retired or not.
func (s *Store) Add(ctx context.Context, story, author string, tags ...string) error {
	norm, err := normaliseAll(tags)
	if err != nil {
		return err
	}
	if err := s.published(ctx, story); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().Unix()
	for _, t := range norm {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO story_tags (story, tag, author, created_at) VALUES (?, ?, ?, ?)`,
			story, t, author, now); err != nil {
			return fmt.Errorf("tag %s %q: %w", story, t, err)
		}
	}
	return tx.Commit()
}

// Remove detaches tags from a story and returns how many were removed.
func (s *Store) Remove(ctx context.Context, story string, tags ...string) (int64, error) {
	norm, err := normaliseAll(tags)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, t := range norm {
		res, err := s.db.ExecContext(ctx, `DELETE FROM story_tags WHERE story = ? AND tag = ?`, story, t)
		if err != nil {
			return n, fmt.Errorf("untag %s %q: %w", story, t, err)
		}
		c, _ := res.RowsAffected()
		n += c
	}
	return n, nil
}

// List returns the tags of one story in alphabetical order.
func (s *Store) List(ctx context.Context, story string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM story_tags WHERE story = ? ORDER BY tag`, story)
	if err != nil {
		return nil, fmt.Errorf("list tags for %s: %w", story, err)
	}
	return scanStrings(rows)
}

// Stories returns the ids of stories carrying a tag.
func (s *Store) Stories(ctx context.Context, t string) ([]string, error) {
	t, err := Normalise(t)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT story FROM story_tags WHERE tag = ? ORDER BY story`, t)
	if err != nil {
		return nil, fmt.Errorf("list stories tagged %q: %w", t, err)
	}
	return scanStrings(rows)
}

// All returns every tag in use with its story count.
func (s *Store) All(ctx context.Context) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag, COUNT(*) FROM story_tags GROUP BY tag ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Tag, &c.Stories); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Prune deletes tags whose story no longer has any version, which happens
// once vacuum has removed it. Returns the number of rows deleted.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM story_tags WHERE story NOT IN (SELECT DISTINCT story FROM stories)`)
	if err != nil {
		return 0, fmt.Errorf("prune tags: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) published(ctx context.Context, story string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM stories WHERE story = ? LIMIT 1`, story).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNoStory, story)
	}
	return err
}

func normaliseAll(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: none given", ErrInvalidTag)
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n, err := Normalise(t)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
