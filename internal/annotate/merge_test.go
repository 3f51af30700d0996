package annotate_test

import (
	"testing"
	"time"

	"keeper/internal/annotate"
	"keeper/internal/library"
)

func member(id string, ann *library.Annotation) *library.MediaFile {
	if ann != nil {
		ann.ItemID = id
		ann.ItemType = library.ItemTypeMediaFile
	}
	return &library.MediaFile{ID: id, Path: "/m/" + id + ".flac", Annotation: ann}
}

func ts(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func TestMergeSumsPlayCountsAndKeepsBestRating(t *testing.T) {
	a := member("a", &library.Annotation{PlayCount: 12})
	b := member("b", &library.Annotation{PlayCount: 5, Rating: 4})

	merged := annotate.Merge(a, []*library.MediaFile{a, b})
	if merged.PlayCount != 17 {
		t.Fatalf("play count = %d, want 17", merged.PlayCount)
	}
	if merged.Rating != 4 {
		t.Fatalf("rating = %d, want 4", merged.Rating)
	}
	if merged.ItemID != "a" || merged.ItemType != library.ItemTypeMediaFile {
		t.Fatalf("merged annotation mis-keyed: %+v", merged)
	}
}

func TestMergePlayCountMonotonicity(t *testing.T) {
	a := member("a", &library.Annotation{PlayCount: 9})
	b := member("b", &library.Annotation{PlayCount: 3})
	c := member("c", &library.Annotation{PlayCount: 14})

	merged := annotate.Merge(a, []*library.MediaFile{a, b, c})
	if merged.PlayCount != 26 {
		t.Fatalf("play count = %d, want sum 26", merged.PlayCount)
	}
	for _, m := range []*library.MediaFile{a, b, c} {
		if merged.PlayCount < m.Annotation.PlayCount {
			t.Fatalf("merged count %d below member %s count %d",
				merged.PlayCount, m.ID, m.Annotation.PlayCount)
		}
	}
}

func TestMergeStarredIsSticky(t *testing.T) {
	a := member("a", &library.Annotation{})
	b := member("b", &library.Annotation{Starred: true, StarredAt: ts("2023-05-01 12:00:00")})
	c := member("c", &library.Annotation{Starred: true, StarredAt: ts("2024-01-01 09:00:00")})

	merged := annotate.Merge(a, []*library.MediaFile{a, b, c})
	if !merged.Starred {
		t.Fatal("expected starred to survive merge")
	}
	if merged.StarredAt == nil || !merged.StarredAt.Equal(*ts("2024-01-01 09:00:00")) {
		t.Fatalf("expected latest starred_at, got %v", merged.StarredAt)
	}
}

func TestMergeKeepsLatestPlayDate(t *testing.T) {
	a := member("a", &library.Annotation{PlayDate: ts("2022-03-01 10:00:00")})
	b := member("b", &library.Annotation{PlayDate: ts("2024-08-15 22:30:00")})
	c := member("c", &library.Annotation{})

	merged := annotate.Merge(a, []*library.MediaFile{a, b, c})
	if merged.PlayDate == nil || !merged.PlayDate.Equal(*ts("2024-08-15 22:30:00")) {
		t.Fatalf("expected latest play date, got %v", merged.PlayDate)
	}
}

func TestMergeIsOrderIndependent(t *testing.T) {
	build := func() []*library.MediaFile {
		return []*library.MediaFile{
			member("a", &library.Annotation{PlayCount: 2, Rating: 3, PlayDate: ts("2023-01-01 00:00:00")}),
			member("b", &library.Annotation{PlayCount: 7, Starred: true, StarredAt: ts("2023-06-01 00:00:00")}),
			member("c", nil),
		}
	}
	keeper := build()[0]

	forward := annotate.Merge(keeper, build())
	members := build()
	reversed := []*library.MediaFile{members[2], members[1], members[0]}
	backward := annotate.Merge(keeper, reversed)

	if forward.PlayCount != backward.PlayCount ||
		forward.Rating != backward.Rating ||
		forward.Starred != backward.Starred {
		t.Fatalf("merge depends on order: %+v vs %+v", forward, backward)
	}
}

func TestMergeIsRepeatable(t *testing.T) {
	members := []*library.MediaFile{
		member("a", &library.Annotation{PlayCount: 4, Rating: 2}),
		member("b", &library.Annotation{PlayCount: 6, Rating: 5}),
	}
	first := annotate.Merge(members[0], members)
	second := annotate.Merge(members[0], members)
	if first != second {
		t.Fatalf("repeated merge differs: %+v vs %+v", first, second)
	}
}

func TestMergeAbsentRatingStaysAbsent(t *testing.T) {
	a := member("a", &library.Annotation{PlayCount: 1})
	b := member("b", &library.Annotation{PlayCount: 2})
	merged := annotate.Merge(a, []*library.MediaFile{a, b})
	if merged.Rating != 0 {
		t.Fatalf("expected absent rating to stay 0, got %d", merged.Rating)
	}
}
