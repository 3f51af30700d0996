package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	// LibraryDB is the Navidrome SQLite database file.
	LibraryDB string `toml:"library_db"`
	// DataDir holds reports, backups, and logs.
	DataDir string `toml:"data_dir"`
	// InputJSON is the duplicate feed produced by the beets duplicatez
	// plugin. Defaults to <data_dir>/beets/beets-duplicates.json.
	InputJSON string `toml:"input_json"`
}

// Library contains settings describing the music library itself.
type Library struct {
	// SourceBase is the library root as the duplicate feed sees it.
	SourceBase string `toml:"source_base"`
	// TargetBase is the library root as Navidrome sees it. Member paths
	// are rewritten from SourceBase to TargetBase before lookup.
	TargetBase string `toml:"target_base"`
	// PreferredExtensions is the ordered allow-list used by the
	// preferred-extension criterion. Entries are stored lowercase
	// without a leading dot.
	PreferredExtensions []string `toml:"preferred_extensions"`
}

// Resolver contains tie-break cascade settings.
type Resolver struct {
	// MaxPasses bounds the album-context fixed-point iteration.
	MaxPasses int `toml:"max_passes"`
}

// Run contains batch execution toggles.
type Run struct {
	// DryRun computes and reports decisions without touching the database.
	DryRun bool `toml:"dry_run"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for keeper.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Library  Library  `toml:"library"`
	Resolver Resolver `toml:"resolver"`
	Run      Run      `toml:"run"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/keeper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("keeper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.ReportDir(), c.BackupDir(), c.LogDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ReportDir is where run report artifacts are written.
func (c *Config) ReportDir() string {
	return filepath.Join(c.Paths.DataDir, "reports")
}

// BackupDir is where pre-run database snapshots are written.
func (c *Config) BackupDir() string {
	return filepath.Join(c.Paths.DataDir, "backups")
}

// LogDir is where log files are written.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.DataDir, "logs")
}

// LockPath is the flock file guarding against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "keeper.lock")
}

// LogDirPath implements logging.LogPaths.
func (c *Config) LogDirPath() string { return c.LogDir() }

// LogFormat implements logging.LogPaths.
func (c *Config) LogFormat() string { return c.Logging.Format }

// LogLevel implements logging.LogPaths.
func (c *Config) LogLevel() string { return c.Logging.Level }

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath exposes tilde expansion for CLI helpers.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}
