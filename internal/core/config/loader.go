package config

import (
	"cratedeps/internal/core/errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

// Load reads a TOML config file, applies environment overrides and defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown config keys: %s", strings.Join(keys, ", ")))
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) {
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.DB.Path = strings.TrimSpace(cfg.DB.Path)
	cfg.Observability.Address = strings.TrimSpace(cfg.Observability.Address)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	cfg.Exclude.Dirs = trimPatterns(cfg.Exclude.Dirs)
	cfg.Exclude.Files = trimPatterns(cfg.Exclude.Files)
}

func trimPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Validate checks a fully defaulted config.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateAnalysis,
		validateExclude,
		validateOutput,
		validateDatabase,
		validateWatch,
		validateObservability,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if cfg.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be >= 1, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.CacheEntries < 1 {
		return fmt.Errorf("analysis.cache_entries must be >= 1, got %d", cfg.Analysis.CacheEntries)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, p := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude.dirs pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Exclude.Files {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude.files pattern %q: %w", p, err)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case FormatJSON, FormatTOML, FormatTSV, FormatText:
		return nil
	}
	return fmt.Errorf("output.format must be one of: json, toml, tsv, text; got %q", cfg.Output.Format)
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && cfg.DB.Path == "" {
		return fmt.Errorf("db.path must not be empty when db is enabled")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.RatePerSecond <= 0 {
		return fmt.Errorf("watch.rate_per_second must be > 0")
	}
	if cfg.Watch.Burst < 1 {
		return fmt.Errorf("watch.burst must be >= 1")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.Enabled && cfg.Observability.Address == "" {
		return fmt.Errorf("observability.address must not be empty when observability is enabled")
	}
	return nil
}
