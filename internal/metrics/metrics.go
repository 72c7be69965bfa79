package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Thumbnail cache metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_cache_lookups_total",
			Help: "Total number of thumbnail cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CacheWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_cache_writes_total",
			Help: "Total number of thumbnail cache writes by status",
		},
		[]string{"status"}, // "success", "error"
	)

	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixsort_cache_size_bytes",
			Help: "Total size of the thumbnail cache in bytes",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixsort_cache_entries",
			Help: "Number of entries in the thumbnail cache",
		},
	)
)

// Janitor metrics
var (
	JanitorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_janitor_runs_total",
			Help: "Total number of cache budget enforcement runs by outcome",
		},
		[]string{"outcome"}, // "noop", "pruned", "skipped", "error"
	)

	JanitorRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixsort_janitor_removed_entries_total",
			Help: "Total number of cache entries removed by the janitor",
		},
	)

	JanitorFreedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixsort_janitor_freed_bytes_total",
			Help: "Total bytes freed by the janitor",
		},
	)
)

// Thumbnail production metrics
var (
	DecodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_decodes_total",
			Help: "Total number of source image decodes by status",
		},
		[]string{"status"}, // "success", "error"
	)

	ThumbnailPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixsort_thumbnail_phase_duration_seconds",
			Help:    "Duration of thumbnail production phases",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"phase"}, // "decode", "resize", "cache_read", "cache_write"
	)

	PreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_previews_total",
			Help: "Total number of previews produced by source",
		},
		[]string{"source"}, // "cache", "rendered", "placeholder"
	)
)

// Scheduler and session metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_jobs_total",
			Help: "Total number of thumbnail jobs by terminal status",
		},
		[]string{"status"}, // "succeeded", "failed", "dropped"
	)

	WorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixsort_workers_busy",
			Help: "Number of workers currently running a job",
		},
	)

	WorkersConfigured = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixsort_workers_configured",
			Help: "Configured worker pool size",
		},
	)

	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_sessions_total",
			Help: "Total number of folder load sessions by outcome",
		},
		[]string{"outcome"}, // "completed", "cancelled", "superseded"
	)

	SessionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixsort_session_duration_seconds",
			Help:    "Wall time of folder load sessions",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	PollHarvested = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pixsort_poll_harvested",
			Help:    "Number of results harvested per poll tick",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixsort_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixsort_memory_paused",
			Help: "Whether job dispatch is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixsort_memory_gc_pauses_total",
			Help: "Total number of times dispatch paused and forced a GC",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixsort_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_filesystem_retry_attempts_total",
			Help: "Total number of retries after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixsort_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors seen",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pixsort_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
