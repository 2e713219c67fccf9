package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot writes a consistent, compacted copy of the replica to dest,
// replacing any previous snapshot there. The copy is built beside dest and
// renamed into place, so readers never observe a partial file.
func (s *SQLiteStore) Snapshot(ctx context.Context, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp := dest + ".tmp"
	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale snapshot: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
