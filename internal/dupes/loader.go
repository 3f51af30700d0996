package dupes

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"keeper/internal/services"
)

// Group is one duplicate candidate set from the feed, paths already
// normalized and rewritten.
type Group struct {
	Key   string
	Paths []string
}

// Options controls path handling while loading the feed.
type Options struct {
	// SourceBase/TargetBase rewrite the library root the feed paths use to
	// the root Navidrome uses. Both empty (or equal) disables rewriting.
	SourceBase string
	TargetBase string
}

// Load parses the duplicate feed at path and returns well-formed groups in
// deterministic key order, plus a per-group malformed error for every group
// that collapses below two members. An unreadable or empty feed is an error
// for the whole load, since there is nothing to reconcile.
func Load(path string, opts Options) ([]Group, map[string]error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read duplicate feed: %w", err)
	}

	var feed map[string][]string
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, nil, fmt.Errorf("parse duplicate feed %s: %w", path, err)
	}
	if len(feed) == 0 {
		return nil, nil, fmt.Errorf("duplicate feed %s holds no groups", path)
	}

	rewrite := opts.SourceBase != "" && opts.TargetBase != "" && opts.SourceBase != opts.TargetBase

	groups := make([]Group, 0, len(feed))
	malformed := make(map[string]error)
	for key, rawPaths := range feed {
		paths := make([]string, 0, len(rawPaths))
		seen := map[string]struct{}{}
		for _, raw := range rawPaths {
			cleaned := norm.NFC.String(strings.TrimSpace(raw))
			if cleaned == "" {
				continue
			}
			if rewrite && strings.HasPrefix(cleaned, opts.SourceBase) {
				cleaned = opts.TargetBase + strings.TrimPrefix(cleaned, opts.SourceBase)
			}
			if _, ok := seen[cleaned]; ok {
				continue
			}
			seen[cleaned] = struct{}{}
			paths = append(paths, cleaned)
		}
		if len(paths) < 2 {
			malformed[key] = services.Wrap(
				services.ErrMalformedInput,
				"load",
				"group members",
				fmt.Sprintf("group %s has %d distinct members after de-duplication, need at least 2", key, len(paths)),
				nil,
			)
			continue
		}
		groups = append(groups, Group{Key: key, Paths: paths})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, malformed, nil
}
