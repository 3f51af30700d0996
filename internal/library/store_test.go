package library_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"keeper/internal/library"
	"keeper/internal/testsupport"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "navidrome.db")
}

func TestOpenResolvesSingleUser(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path)

	store := testsupport.MustOpenLibrary(t, path)
	if store.UserID() != testsupport.TestUserID {
		t.Fatalf("unexpected user id %q", store.UserID())
	}
}

func TestOpenFailsWithoutDatabaseFile(t *testing.T) {
	if _, err := library.Open(context.Background(), fixturePath(t)); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestMediaByPathLoadsRelations(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path, testsupport.TrackSpec{
		ID: "mf-1", Path: "/music/a.flac", Title: "Song A",
		Year: 1999, TrackNumber: 3, BitRate: 1024,
		ArtistID: "ar-1", ArtistName: "Artist", AlbumID: "al-1", AlbumName: "Album",
		MBZRecordingID: "rec-1",
		PlayCount:      7, Rating: 4, Starred: true,
		PlayDate: "2024-06-01 10:00:00", StarredAt: "2023-01-02 08:30:00",
	})
	store := testsupport.MustOpenLibrary(t, path)

	media, err := store.MediaByPath(context.Background(), "/music/a.flac")
	if err != nil {
		t.Fatalf("MediaByPath failed: %v", err)
	}
	if media == nil {
		t.Fatal("expected media file")
	}
	if media.ID != "mf-1" || media.Title != "Song A" || media.BitRate != 1024 {
		t.Fatalf("unexpected media: %+v", media)
	}
	if media.Artist == nil || media.Artist.Name != "Artist" {
		t.Fatalf("expected artist row, got %+v", media.Artist)
	}
	if media.Album == nil || media.Album.Name != "Album" {
		t.Fatalf("expected album row, got %+v", media.Album)
	}
	ann := media.Annotation
	if ann == nil || ann.PlayCount != 7 || ann.Rating != 4 || !ann.Starred {
		t.Fatalf("unexpected annotation: %+v", ann)
	}
	if ann.PlayDate == nil || !ann.PlayDate.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected play date: %v", ann.PlayDate)
	}
}

func TestMediaByPathSynthesizesZeroAnnotation(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path, testsupport.TrackSpec{
		ID: "mf-1", Path: "/music/a.flac", Title: "Song A", NoAnnotation: true,
	})
	store := testsupport.MustOpenLibrary(t, path)

	media, err := store.MediaByPath(context.Background(), "/music/a.flac")
	if err != nil {
		t.Fatalf("MediaByPath failed: %v", err)
	}
	ann := media.Annotation
	if ann == nil {
		t.Fatal("expected synthesized annotation")
	}
	if ann.PlayCount != 0 || ann.Rating != 0 || ann.Starred || ann.PlayDate != nil {
		t.Fatalf("expected zero-value annotation, got %+v", ann)
	}
	if ann.ItemID != "mf-1" || ann.ItemType != library.ItemTypeMediaFile {
		t.Fatalf("annotation mis-keyed: %+v", ann)
	}
}

func TestMediaByPathMissingRowReturnsNil(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path)
	store := testsupport.MustOpenLibrary(t, path)

	media, err := store.MediaByPath(context.Background(), "/music/ghost.mp3")
	if err != nil {
		t.Fatalf("MediaByPath failed: %v", err)
	}
	if media != nil {
		t.Fatalf("expected nil for missing row, got %+v", media)
	}
}

func TestMediaByPathMissingRelations(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path, testsupport.TrackSpec{
		ID: "mf-1", Path: "/music/a.flac", Title: "Song A",
		ArtistID: "ar-gone", ArtistName: "Ghost", ArtistMissing: true,
		AlbumID: "al-gone", AlbumName: "Ghost LP", AlbumMissing: true,
	})
	store := testsupport.MustOpenLibrary(t, path)

	media, err := store.MediaByPath(context.Background(), "/music/a.flac")
	if err != nil {
		t.Fatalf("MediaByPath failed: %v", err)
	}
	if media.Artist != nil {
		t.Fatalf("expected nil artist for missing row, got %+v", media.Artist)
	}
	if media.Album != nil {
		t.Fatalf("expected nil album for missing row, got %+v", media.Album)
	}
	if media.ArtistID != "ar-gone" || media.AlbumID != "al-gone" {
		t.Fatalf("expected ids preserved: %+v", media)
	}
}

func TestApplyMergeCommitsAnnotationAndDiscards(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path,
		testsupport.TrackSpec{ID: "mf-1", Path: "/music/a.flac", Title: "A", PlayCount: 2},
		testsupport.TrackSpec{ID: "mf-2", Path: "/music/a.mp3", Title: "A", PlayCount: 5},
	)
	store := testsupport.MustOpenLibrary(t, path)
	ctx := context.Background()

	playDate := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	merged := &library.Annotation{
		ItemID:    "mf-1",
		ItemType:  library.ItemTypeMediaFile,
		PlayCount: 7,
		PlayDate:  &playDate,
		Rating:    4,
		Starred:   true,
	}
	discards := []library.Discard{{GroupKey: "g-1", MediaID: "mf-2", Path: "/music/a.mp3"}}

	if err := store.ApplyMerge(ctx, merged, discards, "run-1"); err != nil {
		t.Fatalf("ApplyMerge failed: %v", err)
	}

	ann, err := store.AnnotationFor(ctx, "mf-1", library.ItemTypeMediaFile)
	if err != nil {
		t.Fatalf("AnnotationFor failed: %v", err)
	}
	if ann.PlayCount != 7 || ann.Rating != 4 || !ann.Starred {
		t.Fatalf("merged annotation not persisted: %+v", ann)
	}
	if ann.PlayDate == nil || !ann.PlayDate.Equal(playDate) {
		t.Fatalf("play date not persisted: %v", ann.PlayDate)
	}

	marked, err := store.GroupMarked(ctx, "g-1")
	if err != nil {
		t.Fatalf("GroupMarked failed: %v", err)
	}
	if !marked {
		t.Fatal("expected group to be marked after commit")
	}
	count, err := store.DiscardCount(ctx)
	if err != nil {
		t.Fatalf("DiscardCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 discard marker, got %d", count)
	}
}

func TestGroupMarkedFalseForUnknownGroup(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path)
	store := testsupport.MustOpenLibrary(t, path)

	marked, err := store.GroupMarked(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("GroupMarked failed: %v", err)
	}
	if marked {
		t.Fatal("expected unknown group to be unmarked")
	}
}

func TestApplyMergeIsIdempotent(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path,
		testsupport.TrackSpec{ID: "mf-1", Path: "/music/a.flac", Title: "A"},
	)
	store := testsupport.MustOpenLibrary(t, path)
	ctx := context.Background()

	merged := &library.Annotation{ItemID: "mf-1", ItemType: library.ItemTypeMediaFile, PlayCount: 9}
	discards := []library.Discard{{GroupKey: "g-1", MediaID: "mf-2", Path: "/music/a.mp3"}}

	for i := 0; i < 2; i++ {
		if err := store.ApplyMerge(ctx, merged, discards, "run-1"); err != nil {
			t.Fatalf("ApplyMerge pass %d failed: %v", i, err)
		}
	}
	ann, err := store.AnnotationFor(ctx, "mf-1", library.ItemTypeMediaFile)
	if err != nil {
		t.Fatalf("AnnotationFor failed: %v", err)
	}
	if ann.PlayCount != 9 {
		t.Fatalf("expected stable play count 9, got %d", ann.PlayCount)
	}
	count, err := store.DiscardCount(ctx)
	if err != nil {
		t.Fatalf("DiscardCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected markers deduplicated, got %d", count)
	}
}

func TestBackupCopiesDatabase(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path, testsupport.TrackSpec{
		ID: "mf-1", Path: "/music/a.flac", Title: "A", PlayCount: 3,
	})
	store := testsupport.MustOpenLibrary(t, path)

	destDir := filepath.Join(t.TempDir(), "backups")
	snapshot, err := store.Backup(context.Background(), destDir, "run-1")
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	restored := testsupport.MustOpenLibrary(t, snapshot)
	media, err := restored.MediaByPath(context.Background(), "/music/a.flac")
	if err != nil {
		t.Fatalf("read from snapshot failed: %v", err)
	}
	if media == nil || media.Annotation.PlayCount != 3 {
		t.Fatalf("snapshot does not contain seeded data: %+v", media)
	}
}

func TestBackupNamesAreUniquePerRun(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path, testsupport.TrackSpec{
		ID: "mf-1", Path: "/music/a.flac", Title: "A",
	})
	store := testsupport.MustOpenLibrary(t, path)
	destDir := filepath.Join(t.TempDir(), "backups")

	// Two runs started within the same second must both get a snapshot.
	first, err := store.Backup(context.Background(), destDir, "run-1")
	if err != nil {
		t.Fatalf("first Backup failed: %v", err)
	}
	second, err := store.Backup(context.Background(), destDir, "run-2")
	if err != nil {
		t.Fatalf("second Backup failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct snapshot paths, both were %s", first)
	}
	for _, snapshot := range []string{first, second} {
		if _, err := os.Stat(snapshot); err != nil {
			t.Fatalf("snapshot %s missing: %v", snapshot, err)
		}
	}
}

func TestGroupMarkedLeavesSchemaUntouched(t *testing.T) {
	path := fixturePath(t)
	testsupport.CreateLibraryDB(t, path)
	store := testsupport.MustOpenLibrary(t, path)
	ctx := context.Background()

	marked, err := store.GroupMarked(ctx, "g-1")
	if err != nil {
		t.Fatalf("GroupMarked failed: %v", err)
	}
	if marked {
		t.Fatal("expected no markers in a fresh library")
	}
	count, err := store.DiscardCount(ctx)
	if err != nil {
		t.Fatalf("DiscardCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 markers, got %d", count)
	}

	// The read paths must not have created the marker table.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	var tables int
	err = db.QueryRow(
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'keeper_discard'`).Scan(&tables)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if tables != 0 {
		t.Fatal("skip check created the keeper_discard table")
	}
}
