package persist

import (
	"context"
	"log/slog"

	"keeper/internal/library"
	"keeper/internal/logging"
	"keeper/internal/resolver"
	"keeper/internal/services"
)

// Writer applies group resolutions to the library database.
type Writer struct {
	store  *library.Store
	runID  string
	dryRun bool
	logger *slog.Logger
}

// NewWriter constructs a Writer bound to one run.
func NewWriter(store *library.Store, runID string, dryRun bool, logger *slog.Logger) *Writer {
	return &Writer{
		store:  store,
		runID:  runID,
		dryRun: dryRun,
		logger: logging.NewComponentLogger(logger, "persist"),
	}
}

// RunID returns the identifier stamped onto discard markers.
func (w *Writer) RunID() string {
	return w.runID
}

// DryRun reports whether the writer is withholding database writes.
func (w *Writer) DryRun() bool {
	return w.dryRun
}

// AlreadyMerged reports whether a previous run committed this group.
func (w *Writer) AlreadyMerged(ctx context.Context, groupKey string) (bool, error) {
	marked, err := w.store.GroupMarked(ctx, groupKey)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "persist", "skip check", groupKey, err)
	}
	return marked, nil
}

// Commit writes the merged annotation and discard markers for one resolved
// group in a single transaction. In dry-run mode it only logs the plan.
func (w *Writer) Commit(ctx context.Context, result *resolver.Result, merged library.Annotation) error {
	logger := logging.WithContext(ctx, w.logger)
	if w.dryRun {
		logger.Info("dry run: group left untouched",
			logging.String("keeper", result.Keeper.Path),
			logging.Int("discards", len(result.Discards)),
			logging.Int("merged_play_count", merged.PlayCount),
		)
		return nil
	}

	discards := make([]library.Discard, 0, len(result.Discards))
	for _, member := range result.Discards {
		discards = append(discards, library.Discard{
			GroupKey: result.Key,
			MediaID:  member.ID,
			Path:     member.Path,
		})
	}

	if err := w.store.ApplyMerge(ctx, &merged, discards, w.runID); err != nil {
		return services.Wrap(services.ErrPersistence, "persist", "commit group", result.Key, err)
	}

	logger.Info("group committed",
		logging.String("keeper", result.Keeper.Path),
		logging.String("criterion", string(result.Criterion)),
		logging.Int("discards", len(discards)),
	)
	return nil
}
