package annotate

import (
	"time"

	"keeper/internal/library"
)

// Merge combines the annotations of every group member into the record to
// write onto the keeper. Members without an annotation contribute nothing.
//
//   - play count: sum across members, so total listening history never
//     shrinks
//   - rating: highest rating among members that have one, 0 when none do
//   - starred: true when any member is starred; starred_at is the latest
//     timestamp among starred members
//   - play date: latest non-null timestamp
func Merge(keeper *library.MediaFile, members []*library.MediaFile) library.Annotation {
	merged := library.Annotation{
		ItemID:   keeper.ID,
		ItemType: library.ItemTypeMediaFile,
	}
	for _, member := range members {
		annotation := member.Annotation
		if annotation == nil {
			continue
		}
		merged.PlayCount += annotation.PlayCount
		if annotation.Rating > merged.Rating {
			merged.Rating = annotation.Rating
		}
		merged.PlayDate = laterOf(merged.PlayDate, annotation.PlayDate)
		if annotation.Starred {
			merged.Starred = true
			merged.StarredAt = laterOf(merged.StarredAt, annotation.StarredAt)
		}
	}
	return merged
}

func laterOf(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
