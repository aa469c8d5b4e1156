// maint.go implements ledger maintenance operations for the Service layer.
//
// Separated because maintenance operations (vacuum, checkpoint) have
// different usage patterns and risk profiles than publishing. They are run
// by hand or before backups, not during normal use.
//
// Design: Vacuum is the only way to permanently delete versions. Retiring a
// story keeps its history; you have to consciously vacuum to lose it.

package document

import (
	"context"
	"time"
)

// Vacuum permanently removes retired stories, optionally only those retired
// longer than olderThan and whose id starts with prefix.
func (s *Service) Vacuum(ctx context.Context, olderThan *time.Duration, prefix string) (int64, error) {
	return s.store.Vacuum(ctx, olderThan, prefix)
}

// Checkpoint flushes the WAL to the main database file. Removes the -wal and
// -shm files, useful before backup or before committing the ledger.
func (s *Service) Checkpoint(ctx context.Context) error {
	return s.store.Checkpoint(ctx)
}
