package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "PIXSORT_WORKERS"

// ForPresentation returns the pool size for thumbnail decoding: one worker
// per available CPU minus one, so the goroutine driving the UI always has a
// core to itself. Never less than 1, capped at limit (0 = no cap).
// GOMAXPROCS already reflects container CPU limits, unlike runtime.NumCPU.
//
// Can be overridden with the PIXSORT_WORKERS environment variable.
func ForPresentation(limit int) int {
	if count, ok := override(); ok {
		return capAt(count, limit)
	}

	workers := runtime.GOMAXPROCS(0) - 1
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

func override() (int, bool) {
	raw := os.Getenv(EnvOverride)
	if raw == "" {
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

func capAt(workers, limit int) int {
	if limit > 0 && workers > limit {
		return limit
	}
	return workers
}
