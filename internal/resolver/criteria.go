package resolver

import (
	"keeper/internal/library"
	"keeper/internal/textutil"
)

// similarityEpsilon absorbs float noise when comparing similarity scores.
const similarityEpsilon = 1e-9

// albumContext is the shared state the album-context criterion reads: the
// set of album ids already known to contain a keeper.
type albumContext struct {
	keepable map[string]struct{}
}

func newAlbumContext() *albumContext {
	return &albumContext{keepable: make(map[string]struct{})}
}

func (c *albumContext) markKeepable(albumID string) bool {
	if albumID == "" {
		return false
	}
	if _, ok := c.keepable[albumID]; ok {
		return false
	}
	c.keepable[albumID] = struct{}{}
	return true
}

func (c *albumContext) isKeepable(albumID string) bool {
	if albumID == "" {
		return false
	}
	_, ok := c.keepable[albumID]
	return ok
}

// criterion is one pure filter of the cascade: it returns the subset of
// candidates that is best by its measure. The cascade treats an empty or
// full result as a no-op.
type criterion struct {
	name  Criterion
	apply func(ctx *albumContext, candidates []*library.MediaFile) []*library.MediaFile
}

// cascade returns the ordered criterion list. preferredExtensions is the
// configured allow-list, lowercase without dots.
func cascade(preferredExtensions []string) []criterion {
	preferred := make(map[string]struct{}, len(preferredExtensions))
	for _, ext := range preferredExtensions {
		preferred[ext] = struct{}{}
	}

	return []criterion{
		{CriterionAlbumContext, func(ctx *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, func(m *library.MediaFile) bool {
				return ctx.isKeepable(m.AlbumID)
			})
		}},
		{CriterionFilenameSuffix, filterNumericSuffixes},
		{CriterionTitleSimilarity, filterBySimilarity},
		{CriterionPreferredExtension, func(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, func(m *library.MediaFile) bool {
				_, ok := preferred[textutil.Extension(m.Path)]
				return ok
			})
		}},
		{CriterionRecordingID, func(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, (*library.MediaFile).HasRecordingID)
		}},
		{CriterionArtistRecord, func(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, func(m *library.MediaFile) bool { return m.Artist != nil })
		}},
		{CriterionAlbumRecord, func(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, func(m *library.MediaFile) bool { return m.Album != nil })
		}},
		{CriterionTrackNumber, func(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, func(m *library.MediaFile) bool { return m.TrackNumber > 0 })
		}},
		{CriterionBitRate, filterByBitRate},
		{CriterionReleaseYear, func(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
			return keepIf(candidates, func(m *library.MediaFile) bool { return m.Year > 0 })
		}},
	}
}

// keepIf returns the candidates satisfying keep, preserving order.
func keepIf(candidates []*library.MediaFile, keep func(*library.MediaFile) bool) []*library.MediaFile {
	kept := make([]*library.MediaFile, 0, len(candidates))
	for _, candidate := range candidates {
		if keep(candidate) {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// filterNumericSuffixes drops candidates whose file name is another
// surviving candidate's name plus a trailing numeric suffix ("track 1.mp3"
// next to "track.mp3").
func filterNumericSuffixes(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
	return keepIf(candidates, func(m *library.MediaFile) bool {
		for _, other := range candidates {
			if other == m {
				continue
			}
			if textutil.HasNumericSuffixOf(other.Path, m.Path) {
				return false
			}
		}
		return true
	})
}

// filterBySimilarity keeps the candidates whose file name best matches
// their tag metadata.
func filterBySimilarity(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
	scores := make([]float64, len(candidates))
	best := 0.0
	for i, candidate := range candidates {
		scores[i] = textutil.TitleSimilarity(
			candidate.Path, candidate.Title, candidate.ArtistName, candidate.AlbumName)
		if scores[i] > best {
			best = scores[i]
		}
	}
	kept := make([]*library.MediaFile, 0, len(candidates))
	for i, candidate := range candidates {
		if scores[i] >= best-similarityEpsilon {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// filterByBitRate keeps the candidates with the highest bit rate.
func filterByBitRate(_ *albumContext, candidates []*library.MediaFile) []*library.MediaFile {
	best := 0
	for _, candidate := range candidates {
		if candidate.BitRate > best {
			best = candidate.BitRate
		}
	}
	return keepIf(candidates, func(m *library.MediaFile) bool { return m.BitRate == best })
}
