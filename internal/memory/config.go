package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"pixsort/internal/logging"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultMemoryRatio is the share of MEMORY_LIMIT handed to the Go heap.
	// Decoded source images live outside the steady-state heap for short
	// bursts, so the rest is headroom for them.
	DefaultMemoryRatio = 0.85
)

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	// Configured indicates whether GOMEMLIMIT was set
	Configured bool

	// Source indicates where the configuration came from
	Source string // "GOMEMLIMIT", "MEMORY_LIMIT", or "none"

	// ContainerLimit is the memory limit in bytes (0 if not set)
	ContainerLimit int64

	// GoMemLimit is the configured GOMEMLIMIT in bytes (0 if not set)
	GoMemLimit int64

	// Ratio is the memory ratio used (0 if not applicable)
	Ratio float64
}

// ConfigureFromEnv sets GOMEMLIMIT from MEMORY_LIMIT × MEMORY_RATIO unless
// GOMEMLIMIT is already set. Call it early in main.
func ConfigureFromEnv() ConfigResult {
	result := ConfigResult{Source: "none"}

	if goMemLimitEnv := os.Getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = "GOMEMLIMIT"
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	memLimitStr := os.Getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return result
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil || memLimit <= 0 {
		logging.Warn("Failed to parse MEMORY_LIMIT %q: %v", memLimitStr, err)
		return result
	}

	result.ContainerLimit = memLimit
	result.Ratio = parseRatio(os.Getenv("MEMORY_RATIO"))

	goMemLimit := int64(float64(memLimit) * result.Ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = "MEMORY_LIMIT"
	result.GoMemLimit = goMemLimit

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s limit)",
		humanize.IBytes(uint64(goMemLimit)),
		result.Ratio*100,
		humanize.IBytes(uint64(memLimit)),
	)

	return result
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", raw, err, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	if parsed <= 0 || parsed > 1.0 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", raw, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return parsed
}
