// Package startup handles configuration loading and startup/shutdown
// logging.
//
// # Configuration
//
// [LoadConfig] layers four sources, later ones winning: built-in defaults,
// an optional TOML file, environment variables, and command-line
// overrides supplied by the caller. The file is taken from the path
// argument, PIXSORT_CONFIG, or [DefaultConfigPath], in that order.
//
//   - PIXSORT_CACHE_DIR / cache_dir: thumbnail cache (default: user cache dir)
//   - PIXSORT_CACHE_MAX_BYTES / cache_max_bytes: janitor budget, e.g. "200MiB"
//   - PIXSORT_THUMB_SIZES / thumb_sizes: preview sizes (default: 80,150,250)
//   - PIXSORT_DEFAULT_SIZE / default_size_index: initial zoom (default: 1)
//   - PIXSORT_POLL_INTERVAL / poll_interval: poller cadence (default: 16ms)
//   - PIXSORT_BATCH_SIZE / batch_size: results per tick (default: 10)
//   - PIXSORT_EXTENSION / extension: file type to list (default: .png)
//   - PIXSORT_METRICS_ADDR / metrics_addr: Prometheus listener, off if empty
//   - PIXSORT_LOG_FILE / log_file: log destination in interactive mode
//   - PIXSORT_WORKERS / workers: thumbnail workers (default: CPUs - 1)
//   - PIXSORT_LOG_LEVEL or LOG_LEVEL: see package logging
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
