package resolver

import (
	"fmt"
	"strings"

	"keeper/internal/library"
	"keeper/internal/services"
)

// Criterion identifies one step of the tie-break cascade. The value is
// recorded on every resolution so the decision is auditable in the report.
type Criterion string

const (
	CriterionAlbumContext       Criterion = "album-context"
	CriterionFilenameSuffix     Criterion = "filename-suffix"
	CriterionTitleSimilarity    Criterion = "title-similarity"
	CriterionPreferredExtension Criterion = "preferred-extension"
	CriterionRecordingID        Criterion = "musicbrainz-recording-id"
	CriterionArtistRecord       Criterion = "artist-record"
	CriterionAlbumRecord        Criterion = "album-record"
	CriterionTrackNumber        Criterion = "track-number"
	CriterionBitRate            Criterion = "bit-rate"
	CriterionReleaseYear        Criterion = "release-year"
)

// Group is one duplicate candidate set with its members already loaded from
// the library.
type Group struct {
	Key     string
	Members []*library.MediaFile
}

// Result is the resolver's decision for one group.
type Result struct {
	Key       string
	Keeper    *library.MediaFile
	Discards  []*library.MediaFile
	Criterion Criterion
}

// AmbiguousGroupError reports a group the cascade could not reduce to one
// candidate. The full tied candidate set is carried for manual review.
type AmbiguousGroupError struct {
	Key        string
	Candidates []*library.MediaFile
}

func (e *AmbiguousGroupError) Error() string {
	paths := make([]string, 0, len(e.Candidates))
	for _, candidate := range e.Candidates {
		paths = append(paths, candidate.Path)
	}
	return fmt.Sprintf("group %s: cascade exhausted with %d tied candidates: %s",
		e.Key, len(e.Candidates), strings.Join(paths, ", "))
}

func (e *AmbiguousGroupError) Unwrap() error { return services.ErrAmbiguous }
