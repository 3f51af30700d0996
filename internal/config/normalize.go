package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeLogging()
	if c.Resolver.MaxPasses == 0 {
		c.Resolver.MaxPasses = defaultMaxPasses
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if c.Paths.LibraryDB == "" {
		if value, ok := os.LookupEnv("KEEPER_LIBRARY_DB"); ok {
			c.Paths.LibraryDB = value
		}
	}
	var err error
	if c.Paths.LibraryDB != "" {
		if c.Paths.LibraryDB, err = expandPath(c.Paths.LibraryDB); err != nil {
			return fmt.Errorf("paths.library_db: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.InputJSON) == "" {
		c.Paths.InputJSON = filepath.Join(c.Paths.DataDir, "beets", "beets-duplicates.json")
	}
	if c.Paths.InputJSON, err = expandPath(c.Paths.InputJSON); err != nil {
		return fmt.Errorf("paths.input_json: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	extensions := make([]string, 0, len(c.Library.PreferredExtensions))
	seen := map[string]struct{}{}
	for _, ext := range c.Library.PreferredExtensions {
		cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		extensions = append(extensions, cleaned)
	}
	c.Library.PreferredExtensions = extensions
	c.Library.SourceBase = strings.TrimSpace(c.Library.SourceBase)
	c.Library.TargetBase = strings.TrimSpace(c.Library.TargetBase)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
