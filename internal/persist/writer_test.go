package persist_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"keeper/internal/annotate"
	"keeper/internal/library"
	"keeper/internal/logging"
	"keeper/internal/persist"
	"keeper/internal/resolver"
	"keeper/internal/services"
	"keeper/internal/testsupport"
)

func fixtureStore(t *testing.T) *library.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navidrome.db")
	testsupport.CreateLibraryDB(t, path,
		testsupport.TrackSpec{ID: "mf-1", Path: "/music/a.flac", Title: "Song", PlayCount: 12},
		testsupport.TrackSpec{ID: "mf-2", Path: "/music/a 1.flac", Title: "Song", PlayCount: 5, Rating: 4},
	)
	return testsupport.MustOpenLibrary(t, path)
}

func loadGroup(t *testing.T, store *library.Store) (*library.MediaFile, *library.MediaFile) {
	t.Helper()
	ctx := context.Background()
	keeper, err := store.MediaByPath(ctx, "/music/a.flac")
	if err != nil || keeper == nil {
		t.Fatalf("load keeper: %v", err)
	}
	discard, err := store.MediaByPath(ctx, "/music/a 1.flac")
	if err != nil || discard == nil {
		t.Fatalf("load discard: %v", err)
	}
	return keeper, discard
}

func TestCommitWritesAnnotationAndMarkers(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()
	keeper, discard := loadGroup(t, store)

	result := &resolver.Result{
		Key:       "g-1",
		Keeper:    keeper,
		Discards:  []*library.MediaFile{discard},
		Criterion: resolver.CriterionFilenameSuffix,
	}
	merged := annotate.Merge(keeper, []*library.MediaFile{keeper, discard})

	writer := persist.NewWriter(store, "run-1", false, logging.NewNop())
	if err := writer.Commit(ctx, result, merged); err != nil {
		t.Fatalf("commit: %v", err)
	}

	reloaded, err := store.MediaByPath(ctx, "/music/a.flac")
	if err != nil {
		t.Fatalf("reload keeper: %v", err)
	}
	if reloaded.Annotation.PlayCount != 17 || reloaded.Annotation.Rating != 4 {
		t.Fatalf("merged annotation not persisted: %+v", reloaded.Annotation)
	}

	count, err := store.DiscardCount(ctx)
	if err != nil {
		t.Fatalf("discard count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 discard marker, got %d", count)
	}
}

func TestCommitMakesGroupSkippable(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()
	keeper, discard := loadGroup(t, store)

	writer := persist.NewWriter(store, "run-1", false, logging.NewNop())
	merged, err := writer.AlreadyMerged(ctx, "g-1")
	if err != nil {
		t.Fatalf("skip check: %v", err)
	}
	if merged {
		t.Fatal("group reported merged before any commit")
	}

	result := &resolver.Result{
		Key:      "g-1",
		Keeper:   keeper,
		Discards: []*library.MediaFile{discard},
	}
	if err := writer.Commit(ctx, result, annotate.Merge(keeper, []*library.MediaFile{keeper, discard})); err != nil {
		t.Fatalf("commit: %v", err)
	}

	merged, err = writer.AlreadyMerged(ctx, "g-1")
	if err != nil {
		t.Fatalf("skip check after commit: %v", err)
	}
	if !merged {
		t.Fatal("committed group not detected on re-run")
	}
}

func TestDryRunLeavesDatabaseUntouched(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()
	keeper, discard := loadGroup(t, store)

	writer := persist.NewWriter(store, "run-1", true, logging.NewNop())
	result := &resolver.Result{
		Key:      "g-1",
		Keeper:   keeper,
		Discards: []*library.MediaFile{discard},
	}
	if err := writer.Commit(ctx, result, annotate.Merge(keeper, []*library.MediaFile{keeper, discard})); err != nil {
		t.Fatalf("dry-run commit: %v", err)
	}

	reloaded, err := store.MediaByPath(ctx, "/music/a.flac")
	if err != nil {
		t.Fatalf("reload keeper: %v", err)
	}
	if reloaded.Annotation.PlayCount != 12 {
		t.Fatalf("dry run modified annotation: %+v", reloaded.Annotation)
	}
	count, err := store.DiscardCount(ctx)
	if err != nil {
		t.Fatalf("discard count: %v", err)
	}
	if count != 0 {
		t.Fatalf("dry run wrote %d markers", count)
	}
}

func TestCommitFailureClassifiesAsPersistence(t *testing.T) {
	store := fixtureStore(t)
	ctx := context.Background()
	keeper, discard := loadGroup(t, store)
	store.Close()

	writer := persist.NewWriter(store, "run-1", false, logging.NewNop())
	result := &resolver.Result{
		Key:      "g-1",
		Keeper:   keeper,
		Discards: []*library.MediaFile{discard},
	}
	err := writer.Commit(ctx, result, annotate.Merge(keeper, []*library.MediaFile{keeper, discard}))
	if err == nil {
		t.Fatal("expected commit against closed database to fail")
	}
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence marker, got %v", err)
	}
	if services.Classify(err) != services.OutcomePersistence {
		t.Fatalf("expected persistence outcome, got %s", services.Classify(err))
	}
}
