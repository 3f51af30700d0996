package library

import (
	"context"
	"fmt"
	"time"
)

// discardSchema is the only table keeper owns inside the library database.
// Keeping it there lets the merged annotation and the discard markers commit
// in one transaction.
const discardSchema = `
CREATE TABLE IF NOT EXISTS keeper_discard (
    group_key     TEXT NOT NULL,
    media_file_id TEXT NOT NULL,
    path          TEXT NOT NULL,
    run_id        TEXT NOT NULL,
    marked_at     TEXT NOT NULL,
    PRIMARY KEY (group_key, media_file_id)
)`

func (s *Store) ensureDiscardTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, discardSchema); err != nil {
		return fmt.Errorf("create keeper_discard table: %w", err)
	}
	return nil
}

// discardTableExists checks the catalog without creating anything, so the
// read paths stay free of DDL. Dry runs in particular must not touch the
// database.
func (s *Store) discardTableExists(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'keeper_discard'`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check keeper_discard table: %w", err)
	}
	return count > 0, nil
}

// GroupMarked reports whether a previous run already committed discard
// markers for the group. Such groups are skipped on re-runs so play counts
// are never summed twice. A library no run has written to yet has no marker
// table, which simply means nothing is marked.
func (s *Store) GroupMarked(ctx context.Context, groupKey string) (bool, error) {
	exists, err := s.discardTableExists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	var count int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM keeper_discard WHERE group_key = ?`, groupKey).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query discard markers for %q: %w", groupKey, err)
	}
	return count > 0, nil
}

// ApplyMerge writes the merged annotation onto the keeper and marks every
// discard candidate, all inside one transaction. Either both take effect or
// neither does.
func (s *Store) ApplyMerge(ctx context.Context, merged *Annotation, discards []Discard, runID string) error {
	if merged == nil {
		return fmt.Errorf("merged annotation is nil")
	}
	if err := s.ensureDiscardTable(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin group transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        INSERT OR REPLACE INTO annotation
            (user_id, item_id, item_type, play_count, play_date, rating, starred, starred_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.userID,
		merged.ItemID,
		string(merged.ItemType),
		merged.PlayCount,
		formatAnnotationTime(merged.PlayDate),
		merged.Rating,
		merged.Starred,
		formatAnnotationTime(merged.StarredAt),
	)
	if err != nil {
		return fmt.Errorf("write merged annotation for %q: %w", merged.ItemID, err)
	}

	markedAt := time.Now().UTC().Format(annotationTimeLayout)
	for _, discard := range discards {
		_, err = tx.ExecContext(ctx, `
            INSERT OR REPLACE INTO keeper_discard
                (group_key, media_file_id, path, run_id, marked_at)
            VALUES (?, ?, ?, ?, ?)`,
			discard.GroupKey, discard.MediaID, discard.Path, runID, markedAt,
		)
		if err != nil {
			return fmt.Errorf("mark discard %q: %w", discard.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit group transaction: %w", err)
	}
	return nil
}

// DiscardCount returns how many discard markers the database holds.
func (s *Store) DiscardCount(ctx context.Context) (int, error) {
	exists, err := s.discardTableExists(ctx)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM keeper_discard`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count discard markers: %w", err)
	}
	return count, nil
}
