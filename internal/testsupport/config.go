package testsupport

import (
	"path/filepath"
	"testing"

	"keeper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The library database path points into the temp tree; use CreateLibraryDB
// to materialize it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDB = filepath.Join(base, "navidrome.db")
	cfg.Paths.DataDir = filepath.Join(base, "keeper")
	cfg.Paths.InputJSON = filepath.Join(base, "beets-duplicates.json")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithPreferredExtensions overrides the extension allow-list.
func WithPreferredExtensions(exts ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Library.PreferredExtensions = exts
	}
}

// WithDryRun toggles dry-run mode on the test config.
func WithDryRun(dry bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Run.DryRun = dry
	}
}

// WithBasePaths sets the source/target base rewrite pair.
func WithBasePaths(source, target string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Library.SourceBase = source
		cfg.Library.TargetBase = target
	}
}
