// Package metrics provides Prometheus instrumentation for pixsort.
//
// All metrics are prefixed with "pixsort_" and registered at package init
// through promauto, so instrumented packages just import and increment.
//
// # Metric Categories
//
//   - Cache: lookups by result (hit, miss, error), writes by status, and
//     size/entry gauges refreshed by the Collector.
//   - Janitor: runs by outcome, entries removed, bytes freed.
//   - Thumbnails: decodes by status, per-phase durations, previews by source.
//   - Scheduler/session: jobs by terminal status, busy workers, sessions by
//     outcome, results harvested per poll tick.
//   - Memory: usage ratio and pause state from the memory monitor.
//   - Filesystem: durations, errors and ESTALE retries, recorded through
//     the filesystem.Observer returned by NewFilesystemObserver.
//
// # Exposure
//
// pixsort is a desktop tool, so nothing is served unless metrics_addr
// (PIXSORT_METRICS_ADDR) is set. Serve then exposes /metrics and /healthz.
package metrics
