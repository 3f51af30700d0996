package config

const (
	defaultLibraryDB = "~/.local/share/navidrome/navidrome.db"
	defaultDataDir   = "~/.local/share/keeper"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
	defaultMaxPasses = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDB: defaultLibraryDB,
			DataDir:   defaultDataDir,
		},
		Library: Library{
			PreferredExtensions: []string{"flac", "mp3"},
		},
		Resolver: Resolver{
			MaxPasses: defaultMaxPasses,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
