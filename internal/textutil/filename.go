package textutil

import (
	"path/filepath"
	"strings"
)

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extension returns the lowercase file extension of path without the dot.
func Extension(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// HasNumericSuffixOf reports whether suffixed names the same file as plain
// except for a trailing numeric suffix before the extension, e.g.
// "track.mp3" and "track 1.mp3". Directories are ignored; only base names
// are compared.
func HasNumericSuffixOf(plain, suffixed string) bool {
	plainStem := Stem(plain)
	suffixedStem := Stem(suffixed)
	if plainStem == "" || suffixedStem == plainStem {
		return false
	}
	rest := strings.TrimPrefix(suffixedStem, plainStem)
	if rest == suffixedStem {
		return false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
