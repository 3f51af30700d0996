package library

import "time"

// ItemType distinguishes what a library annotation is attached to.
type ItemType string

const (
	ItemTypeMediaFile ItemType = "media_file"
	ItemTypeArtist    ItemType = "artist"
	ItemTypeAlbum     ItemType = "album"
)

// Annotation is the per-user listening state attached to one library item.
type Annotation struct {
	ItemID    string
	ItemType  ItemType
	PlayCount int
	PlayDate  *time.Time
	Rating    int
	Starred   bool
	StarredAt *time.Time
}

// Artist is the subset of the artist table the cascade needs.
type Artist struct {
	ID         string
	Name       string
	AlbumCount int
}

// Album is the subset of the album table the cascade needs.
type Album struct {
	ID        string
	Name      string
	ArtistID  string
	SongCount int
}

// MediaFile is one physical track candidate. Immutable once loaded for a
// run; Artist and Album are nil when the referenced row does not exist.
type MediaFile struct {
	ID             string
	Path           string
	Title          string
	Year           int
	TrackNumber    int
	Duration       int // seconds
	BitRate        int // kbps
	ArtistID       string
	ArtistName     string
	AlbumID        string
	AlbumName      string
	MBZRecordingID string

	Artist     *Artist
	Album      *Album
	Annotation *Annotation
}

// HasRecordingID reports whether the track carries a MusicBrainz recording id.
func (m *MediaFile) HasRecordingID() bool {
	return m != nil && m.MBZRecordingID != ""
}

// Discard names one non-keeper member marked eligible for removal.
type Discard struct {
	GroupKey string
	MediaID  string
	Path     string
}
