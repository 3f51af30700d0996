package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// annotationTimeLayout matches the format Navidrome writes into the
// annotation date columns.
const annotationTimeLayout = "2006-01-02 15:04:05"

// MediaByPath loads the media file stored under path together with its
// annotation and artist/album rows. Returns nil when no row matches.
// A track without an annotation row gets a zero-value annotation so the
// merge always has something to combine.
func (s *Store) MediaByPath(ctx context.Context, path string) (*MediaFile, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, title, year, track_number, duration, bit_rate,
               artist_id, artist, album_id, album, mbz_recording_id
        FROM media_file
        WHERE path = ?`, path)

	var (
		media                                  MediaFile
		year, trackNumber, duration, bitRate   sql.NullInt64
		artistID, artistName, albumID, albumName, recordingID sql.NullString
	)
	err := row.Scan(
		&media.ID, &media.Title, &year, &trackNumber, &duration, &bitRate,
		&artistID, &artistName, &albumID, &albumName, &recordingID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query media file %q: %w", path, err)
	}

	media.Path = path
	media.Year = int(year.Int64)
	media.TrackNumber = int(trackNumber.Int64)
	media.Duration = int(duration.Int64)
	media.BitRate = int(bitRate.Int64)
	media.ArtistID = artistID.String
	media.ArtistName = artistName.String
	media.AlbumID = albumID.String
	media.AlbumName = albumName.String
	media.MBZRecordingID = recordingID.String

	annotation, err := s.AnnotationFor(ctx, media.ID, ItemTypeMediaFile)
	if err != nil {
		return nil, err
	}
	if annotation == nil {
		annotation = &Annotation{ItemID: media.ID, ItemType: ItemTypeMediaFile}
	}
	media.Annotation = annotation

	if media.ArtistID != "" {
		if media.Artist, err = s.artistByID(ctx, media.ArtistID); err != nil {
			return nil, err
		}
	}
	if media.AlbumID != "" {
		if media.Album, err = s.albumByID(ctx, media.AlbumID); err != nil {
			return nil, err
		}
	}
	return &media, nil
}

// AnnotationFor fetches the user's annotation for one item. Returns nil when
// no row exists.
func (s *Store) AnnotationFor(ctx context.Context, itemID string, itemType ItemType) (*Annotation, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT play_count, play_date, rating, starred, starred_at
        FROM annotation
        WHERE user_id = ? AND item_id = ? AND item_type = ?`,
		s.userID, itemID, string(itemType))

	var (
		playCount, rating  sql.NullInt64
		playDate, starredAt sql.NullString
		starred            sql.NullBool
	)
	err := row.Scan(&playCount, &playDate, &rating, &starred, &starredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query annotation for %s %s: %w", itemType, itemID, err)
	}

	annotation := &Annotation{
		ItemID:    itemID,
		ItemType:  itemType,
		PlayCount: int(playCount.Int64),
		Rating:    int(rating.Int64),
		Starred:   starred.Bool,
	}
	if annotation.PlayDate, err = parseAnnotationTime(playDate); err != nil {
		return nil, fmt.Errorf("parse play_date for %s: %w", itemID, err)
	}
	if annotation.StarredAt, err = parseAnnotationTime(starredAt); err != nil {
		return nil, fmt.Errorf("parse starred_at for %s: %w", itemID, err)
	}
	return annotation, nil
}

func (s *Store) artistByID(ctx context.Context, id string) (*Artist, error) {
	if cached, ok := s.artists[id]; ok {
		return cached, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT name, album_count FROM artist WHERE id = ?`, id)
	var (
		name       sql.NullString
		albumCount sql.NullInt64
	)
	err := row.Scan(&name, &albumCount)
	if errors.Is(err, sql.ErrNoRows) {
		s.artists[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query artist %q: %w", id, err)
	}
	artist := &Artist{ID: id, Name: name.String, AlbumCount: int(albumCount.Int64)}
	s.artists[id] = artist
	return artist, nil
}

func (s *Store) albumByID(ctx context.Context, id string) (*Album, error) {
	if cached, ok := s.albums[id]; ok {
		return cached, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT name, artist_id, song_count FROM album WHERE id = ?`, id)
	var (
		name, artistID sql.NullString
		songCount      sql.NullInt64
	)
	err := row.Scan(&name, &artistID, &songCount)
	if errors.Is(err, sql.ErrNoRows) {
		s.albums[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query album %q: %w", id, err)
	}
	album := &Album{ID: id, Name: name.String, ArtistID: artistID.String, SongCount: int(songCount.Int64)}
	s.albums[id] = album
	return album, nil
}

func parseAnnotationTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(annotationTimeLayout, value.String); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatAnnotationTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(annotationTimeLayout)
}
