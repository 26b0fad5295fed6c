package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cratedeps_parsing_seconds",
		Help:    "Time spent parsing a source file into a syntax tree.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cratedeps_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cratedeps_files_analyzed_total",
		Help: "Total number of files analyzed, by outcome.",
	}, []string{"outcome"})

	ImportsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cratedeps_imports_recorded_total",
		Help: "Total number of crate imports reported, by bucket.",
	}, []string{"bucket"})

	ParserPoolActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cratedeps_parser_pool_active",
		Help: "Current number of tree-sitter parsers leased from the pool.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cratedeps_cache_hits_total",
		Help: "Total number of analyses served from the content-hash cache.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cratedeps_cache_misses_total",
		Help: "Total number of analyses that required a fresh parse.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cratedeps_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cratedeps_watcher_throttled_total",
		Help: "Total number of change batches delayed by the re-analysis rate limit.",
	})

	StoreWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cratedeps_store_write_errors_total",
		Help: "Total number of failed report writes to the persistent store.",
	})
)

// Outcome labels for FilesAnalyzedTotal.
const (
	OutcomeOK         = "ok"
	OutcomeCached     = "cached"
	OutcomeIOError    = "io_error"
	OutcomeParseError = "parse_error"
	OutcomeInternal   = "internal_error"
)
