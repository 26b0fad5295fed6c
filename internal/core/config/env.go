package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const envPrefix = "CRATEDEPS_"

// envOverride binds one CRATEDEPS_* variable to a config field. apply
// reports whether the raw value parsed; unparsable values are ignored.
type envOverride struct {
	name  string
	apply func(raw string) bool
}

func stringVar(dst *string) func(string) bool {
	return func(raw string) bool { *dst = raw; return true }
}

func intVar(dst *int) func(string) bool {
	return func(raw string) bool {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return false
		}
		*dst = n
		return true
	}
}

func boolVar(dst *bool) func(string) bool {
	return func(raw string) bool {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		*dst = v
		return true
	}
}

func floatVar(dst *float64) func(string) bool {
	return func(raw string) bool {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		*dst = f
		return true
	}
}

func durationVar(dst *time.Duration) func(string) bool {
	return func(raw string) bool {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return false
		}
		*dst = d
		return true
	}
}

func overridesFor(cfg *Config) []envOverride {
	return []envOverride{
		{"ANALYSIS_WORKERS", intVar(&cfg.Analysis.Workers)},
		{"ANALYSIS_CACHE_ENTRIES", intVar(&cfg.Analysis.CacheEntries)},
		{"OUTPUT_FORMAT", stringVar(&cfg.Output.Format)},
		{"DB_ENABLED", boolVar(&cfg.DB.Enabled)},
		{"DB_PATH", stringVar(&cfg.DB.Path)},
		{"DB_BUSY_TIMEOUT", durationVar(&cfg.DB.BusyTimeout)},
		{"WATCH_DEBOUNCE", durationVar(&cfg.Watch.Debounce)},
		{"WATCH_RATE_PER_SECOND", floatVar(&cfg.Watch.RatePerSecond)},
		{"WATCH_BURST", intVar(&cfg.Watch.Burst)},
		{"OBSERVABILITY_ENABLED", boolVar(&cfg.Observability.Enabled)},
		{"OBSERVABILITY_ADDRESS", stringVar(&cfg.Observability.Address)},
		{"OBSERVABILITY_OTLP_ENDPOINT", stringVar(&cfg.Observability.OTLPEndpoint)},
		{"OBSERVABILITY_OTLP_INSECURE", boolVar(&cfg.Observability.OTLPInsecure)},
	}
}

// ApplyEnvOverrides copies CRATEDEPS_<SECTION>_<KEY> variables onto cfg,
// e.g. CRATEDEPS_DB_PATH overrides db.path.
func ApplyEnvOverrides(cfg *Config) {
	for _, o := range overridesFor(cfg) {
		key := envPrefix + o.name
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if !o.apply(raw) {
			log.Printf("Ignoring env override %s: cannot parse %q", key, raw)
			continue
		}
		log.Printf("Applying env override: %s=%s", key, raw)
	}
}
