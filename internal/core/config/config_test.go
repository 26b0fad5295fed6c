package config

import (
	"cratedeps/internal/core/errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cratedeps.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
version = 1

[analysis]
workers = 3
cache_entries = 64

[exclude]
dirs = ["target", "vendor"]
files = ["*_generated.rs"]

[output]
format = "TSV"

[db]
enabled = true
path = "state/cratedeps.db"
busy_timeout = "2s"

[watch]
debounce = "1s"
rate_per_second = 2.5
burst = 3

[observability]
enabled = true
address = "127.0.0.1:9000"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.CacheEntries != 64 {
		t.Errorf("Expected cache_entries 64, got %d", cfg.Analysis.CacheEntries)
	}
	if len(cfg.Exclude.Dirs) != 2 || cfg.Exclude.Dirs[1] != "vendor" {
		t.Errorf("Unexpected exclude dirs: %v", cfg.Exclude.Dirs)
	}
	if cfg.Output.Format != FormatTSV {
		t.Errorf("Expected format tsv, got %q", cfg.Output.Format)
	}
	if !cfg.DB.Enabled || cfg.DB.Path != "state/cratedeps.db" || cfg.DB.BusyTimeout != 2*time.Second {
		t.Errorf("Unexpected db config: %+v", cfg.DB)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RatePerSecond != 2.5 || cfg.Watch.Burst != 3 {
		t.Errorf("Unexpected watch limits: %+v", cfg.Watch)
	}
	if cfg.Observability.Address != "127.0.0.1:9000" {
		t.Errorf("Unexpected observability address %q", cfg.Observability.Address)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.Workers != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), cfg.Analysis.Workers)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("Expected default format json, got %q", cfg.Output.Format)
	}
	found := false
	for _, d := range cfg.Exclude.Dirs {
		if d == "target" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected target in default exclude dirs, got %v", cfg.Exclude.Dirs)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.DB.Enabled {
		t.Error("Expected db disabled by default")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"version":       "version = 2\n",
		"format":        "[output]\nformat = \"yaml\"\n",
		"glob":          "[exclude]\nfiles = [\"[\"]\n",
		"db path":       "[db]\nenabled = true\npath = \"  \"\n",
		"unknown key":   "[output]\ndot = \"graph.dot\"\n",
		"negative wait": "[watch]\ndebounce = \"-1s\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Errorf("Expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !os.IsNotExist(err) {
		t.Fatalf("Expected not-exist error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CRATEDEPS_OUTPUT_FORMAT", "text")
	t.Setenv("CRATEDEPS_DB_ENABLED", "true")
	t.Setenv("CRATEDEPS_ANALYSIS_WORKERS", "7")
	t.Setenv("CRATEDEPS_WATCH_DEBOUNCE", "250ms")
	t.Setenv("CRATEDEPS_WATCH_BURST", "not-a-number")

	cfg, err := Load(writeConfig(t, "[output]\nformat = \"json\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Expected env format text, got %q", cfg.Output.Format)
	}
	if !cfg.DB.Enabled {
		t.Error("Expected env to enable db")
	}
	if cfg.Analysis.Workers != 7 {
		t.Errorf("Expected 7 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Expected 250ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.Burst != 1 {
		t.Errorf("Expected unparsable burst to keep default 1, got %d", cfg.Watch.Burst)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
