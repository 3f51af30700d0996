package testsupport

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"keeper/internal/library"
)

// fixtureSchema mirrors the slice of the Navidrome schema keeper touches.
const fixtureSchema = `
CREATE TABLE user (
    id        TEXT PRIMARY KEY,
    user_name TEXT NOT NULL
);
CREATE TABLE artist (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    album_count INTEGER DEFAULT 0
);
CREATE TABLE album (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    artist_id  TEXT,
    song_count INTEGER DEFAULT 0
);
CREATE TABLE media_file (
    id               TEXT PRIMARY KEY,
    path             TEXT NOT NULL,
    title            TEXT NOT NULL,
    year             INTEGER,
    track_number     INTEGER,
    duration         INTEGER,
    bit_rate         INTEGER,
    artist_id        TEXT,
    artist           TEXT,
    album_id         TEXT,
    album            TEXT,
    mbz_recording_id TEXT
);
CREATE TABLE annotation (
    user_id    TEXT NOT NULL,
    item_id    TEXT NOT NULL,
    item_type  TEXT NOT NULL,
    play_count INTEGER DEFAULT 0,
    play_date  TEXT,
    rating     INTEGER DEFAULT 0,
    starred    BOOLEAN DEFAULT 0,
    starred_at TEXT,
    PRIMARY KEY (user_id, item_id, item_type)
);
`

// TestUserID is the single account fixture databases are seeded with.
const TestUserID = "user-1"

// TrackSpec describes one media_file fixture row plus its optional
// annotation and related artist/album rows.
type TrackSpec struct {
	ID             string
	Path           string
	Title          string
	Year           int
	TrackNumber    int
	Duration       int
	BitRate        int
	ArtistID       string
	ArtistName     string
	AlbumID        string
	AlbumName      string
	MBZRecordingID string

	// ArtistMissing/AlbumMissing keep the id on the media_file row while
	// omitting the referenced artist/album row itself.
	ArtistMissing bool
	AlbumMissing  bool

	PlayCount int
	PlayDate  string // annotationTimeLayout, empty for NULL
	Rating    int
	Starred   bool
	StarredAt string
	// NoAnnotation omits the annotation row entirely.
	NoAnnotation bool
}

// CreateLibraryDB materializes a fixture Navidrome database at path with a
// single user account and the provided tracks.
func CreateLibraryDB(t testing.TB, path string, tracks ...TrackSpec) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO user (id, user_name) VALUES (?, ?)`, TestUserID, "listener"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	SeedTracks(t, db, tracks...)
}

// SeedTracks inserts fixture tracks into an already-created database.
func SeedTracks(t testing.TB, db *sql.DB, tracks ...TrackSpec) {
	t.Helper()

	for _, track := range tracks {
		if track.ArtistID != "" && !track.ArtistMissing {
			_, err := db.Exec(
				`INSERT OR IGNORE INTO artist (id, name, album_count) VALUES (?, ?, 1)`,
				track.ArtistID, track.ArtistName)
			if err != nil {
				t.Fatalf("seed artist %s: %v", track.ArtistID, err)
			}
		}
		if track.AlbumID != "" && !track.AlbumMissing {
			_, err := db.Exec(
				`INSERT OR IGNORE INTO album (id, name, artist_id, song_count) VALUES (?, ?, ?, 1)`,
				track.AlbumID, track.AlbumName, track.ArtistID)
			if err != nil {
				t.Fatalf("seed album %s: %v", track.AlbumID, err)
			}
		}
		_, err := db.Exec(`
            INSERT INTO media_file
                (id, path, title, year, track_number, duration, bit_rate,
                 artist_id, artist, album_id, album, mbz_recording_id)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			track.ID, track.Path, track.Title,
			nullableInt(track.Year), nullableInt(track.TrackNumber),
			nullableInt(track.Duration), nullableInt(track.BitRate),
			nullableStr(track.ArtistID), nullableStr(track.ArtistName),
			nullableStr(track.AlbumID), nullableStr(track.AlbumName),
			nullableStr(track.MBZRecordingID))
		if err != nil {
			t.Fatalf("seed media_file %s: %v", track.ID, err)
		}
		if track.NoAnnotation {
			continue
		}
		_, err = db.Exec(`
            INSERT INTO annotation
                (user_id, item_id, item_type, play_count, play_date, rating, starred, starred_at)
            VALUES (?, ?, 'media_file', ?, ?, ?, ?, ?)`,
			TestUserID, track.ID, track.PlayCount,
			nullableStr(track.PlayDate), track.Rating, track.Starred,
			nullableStr(track.StarredAt))
		if err != nil {
			t.Fatalf("seed annotation %s: %v", track.ID, err)
		}
	}
}

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, path string) *library.Store {
	t.Helper()

	store, err := library.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableStr(value string) any {
	if value == "" {
		return nil
	}
	return value
}
