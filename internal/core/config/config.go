package config

import (
	"runtime"
	"time"
)

const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatTSV  = "tsv"
	FormatText = "text"
)

type Config struct {
	Version       int           `toml:"version"`
	Analysis      Analysis      `toml:"analysis"`
	Exclude       Exclude       `toml:"exclude"`
	Output        Output        `toml:"output"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Analysis struct {
	Workers      int `toml:"workers"`
	CacheEntries int `toml:"cache_entries"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`  // Directory base-name globs skipped while scanning
	Files []string `toml:"files"` // File base-name globs skipped while scanning
}

type Output struct {
	Format string `toml:"format"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Debounce      time.Duration `toml:"debounce"`
	RatePerSecond float64       `toml:"rate_per_second"` // Re-analysis batches allowed per second
	Burst         int           `toml:"burst"`
}

type Observability struct {
	Enabled      bool   `toml:"enabled"`
	Address      string `toml:"address"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Analysis.Workers <= 0 {
		cfg.Analysis.Workers = runtime.NumCPU()
	}
	if cfg.Analysis.CacheEntries <= 0 {
		cfg.Analysis.CacheEntries = 4096
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "target", "node_modules", "bazel-*"}
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatJSON
	}

	if cfg.DB.Path == "" {
		cfg.DB.Path = "data/cratedeps.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RatePerSecond <= 0 {
		cfg.Watch.RatePerSecond = 4
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 1
	}

	if cfg.Observability.Address == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
}
