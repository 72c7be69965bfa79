/*
Package workers sizes the thumbnail worker pool.

# Overview

Decoding and resizing images is CPU-bound, so the pool is sized from
runtime.GOMAXPROCS(0), which Go sets from the container CPU quota, rather
than runtime.NumCPU(), which reports the host.

	// Leaves one CPU for the goroutine that drives the terminal UI
	n := workers.ForPresentation(0)

# Environment Variable Override

PIXSORT_WORKERS pins the count. Non-numeric, zero and
negative values are ignored. The limit argument still applies:

	PIXSORT_WORKERS=4 pixsort ~/Pictures/comic
*/
package workers
