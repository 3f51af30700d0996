package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Backup snapshots the database file into destDir and returns the snapshot
// path. The WAL is checkpointed first so the copy is self-contained. This is
// the run's disaster-recovery mechanism; callers must not write anything if
// it fails. The run id keeps the snapshot name unique even when two runs
// start within the same second, so an immediate re-run never collides.
func (s *Store) Backup(ctx context.Context, destDir, runID string) (string, error) {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("checkpoint wal: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("navidrome-%s-%s.db", stamp, runID)
	if runID == "" {
		name = fmt.Sprintf("navidrome-%s.db", stamp)
	}
	target := filepath.Join(destDir, name)

	source, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("open database for backup: %w", err)
	}
	defer source.Close()

	dest, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		_ = dest.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("copy database: %w", err)
	}
	if err := dest.Sync(); err != nil {
		_ = dest.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("sync backup: %w", err)
	}
	if err := dest.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close backup: %w", err)
	}
	return target, nil
}
