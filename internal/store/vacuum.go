// vacuum.go implements permanent deletion of retired stories.
//
// Separated because vacuum is a destructive, irreversible operation with
// different semantics than retirement. Vacuum should be called deliberately,
// not as part of normal operations.
//
// Design: Retirement enables recovery; vacuum removes that safety net.
// The olderThan parameter keeps recent retirements recoverable while
// cleaning up old ones.

package store

import (
	"context"
	"fmt"
	"time"
)

// Vacuum permanently removes retired versions from the database.
// Parameters:
//   - olderThan: if non-nil, only remove versions retired before this duration ago
//   - prefix: if non-empty, only remove stories whose id starts with prefix
//
// Returns the number of versions removed.
func (s *SQLiteStore) Vacuum(ctx context.Context, olderThan *time.Duration, prefix string) (int64, error) {
	query := `DELETE FROM stories WHERE deleted_at IS NOT NULL`
	var args []any
	if olderThan != nil {
		query += ` AND deleted_at < ?`
		args = append(args, time.Now().Add(-*olderThan).Unix())
	}
	if prefix != "" {
		query += ` AND story LIKE ?`
		args = append(args, prefix+"%")
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("vacuum stories: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("vacuum stories: %w", err)
	}
	return n, nil
}
