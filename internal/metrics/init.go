package metrics

import "pixsort/internal/filesystem"

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, r := range []string{"hit", "miss", "error"} {
		CacheLookupsTotal.WithLabelValues(r)
	}
	for _, s := range []string{"success", "error"} {
		CacheWritesTotal.WithLabelValues(s)
		DecodesTotal.WithLabelValues(s)
	}
	for _, o := range []string{"noop", "pruned", "skipped", "error"} {
		JanitorRunsTotal.WithLabelValues(o)
	}
	for _, p := range []string{"decode", "resize", "cache_read", "cache_write"} {
		ThumbnailPhaseDuration.WithLabelValues(p)
	}
	for _, s := range []string{"cache", "rendered", "placeholder"} {
		PreviewsTotal.WithLabelValues(s)
	}
	for _, s := range []string{"succeeded", "failed", "dropped"} {
		JobsTotal.WithLabelValues(s)
	}
	for _, o := range []string{"completed", "cancelled", "superseded"} {
		SessionsTotal.WithLabelValues(o)
		SessionDuration.WithLabelValues(o)
	}

	volumes := []string{filesystem.VolumeSource, filesystem.VolumeCache}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
