package textutil

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TitleSimilarity scores how well the file name behind path matches the
// track's tag metadata. Three spellings are tried, mirroring common naming
// schemes, and the best ratio wins:
//
//	<title>
//	<artist> - <title>
//	<artist> - <album> - <title>
//
// The result is in [0, 1].
func TitleSimilarity(path, title, artist, album string) float64 {
	stem := strings.ToLower(Stem(path))
	if stem == "" {
		return 0
	}
	jw := metrics.NewJaroWinkler()

	candidates := []string{title}
	if artist != "" {
		candidates = append(candidates, artist+" - "+title)
		if album != "" {
			candidates = append(candidates, artist+" - "+album+" - "+title)
		}
	}

	best := 0.0
	for _, candidate := range candidates {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			continue
		}
		if score := strutil.Similarity(stem, candidate, jw); score > best {
			best = score
		}
	}
	return best
}
