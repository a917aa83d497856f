package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pycheck_parsing_seconds",
		Help:    "Time spent parsing a Python source file.",
		Buckets: prometheus.DefBuckets,
	})

	FilesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pycheck_files_parsed_total",
		Help: "Total number of files parsed, by outcome.",
	}, []string{"outcome"})

	GraphModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pycheck_graph_modules_total",
		Help: "Total number of modules in the import graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pycheck_graph_edges_total",
		Help: "Total number of import edges in the import graph.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pycheck_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pycheck_diagnostics_total",
		Help: "Total number of diagnostics emitted, by rule.",
	}, []string{"rule"})

	CycleCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pycheck_cycle_cache_entries",
		Help: "Modules with a committed cycle cache entry.",
	})

	CyclicModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pycheck_cyclic_modules",
		Help: "Modules participating in at least one import cycle.",
	})

	ParseCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pycheck_parse_cache_hits_total",
		Help: "Total number of parse results served from the file cache.",
	})

	ParseCacheShedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pycheck_parse_cache_shed_total",
		Help: "Total number of parse cache entries dropped by the memory guard.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pycheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescanTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pycheck_rescans_total",
		Help: "Total number of analysis passes triggered in watch mode.",
	})

	HistoryWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pycheck_history_writes_total",
		Help: "Total number of run snapshots persisted to the history store.",
	})

	HistoryWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pycheck_history_write_errors_total",
		Help: "Total number of failed history snapshot writes.",
	})
)
