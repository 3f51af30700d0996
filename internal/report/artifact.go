package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// WriteArtifact persists the summary as report-<runid>.json inside dir and
// returns the artifact path.
func WriteArtifact(summary Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	target := filepath.Join(dir, fmt.Sprintf("report-%s.json", summary.RunID))
	if err := os.WriteFile(target, append(payload, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}
	return target, nil
}

// ReadArtifact loads a previously written artifact.
func ReadArtifact(path string) (Summary, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read report artifact: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return Summary{}, fmt.Errorf("decode report artifact %q: %w", path, err)
	}
	return summary, nil
}

// LatestArtifact finds the most recently written report in dir.
func LatestArtifact(dir string) (Summary, string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "report-*.json"))
	if err != nil {
		return Summary{}, "", fmt.Errorf("scan report directory: %w", err)
	}
	if len(matches) == 0 {
		return Summary{}, "", fmt.Errorf("no report artifacts in %s", dir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	summary, err := ReadArtifact(matches[0])
	if err != nil {
		return Summary{}, "", err
	}
	return summary, matches[0], nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
