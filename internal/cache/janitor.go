package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pixsort/internal/logging"
	"pixsort/internal/metrics"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
)

// LockName is the advisory lock file taken while pruning.
const LockName = ".janitor.lock"

// TempGrace is how old a leftover Put temp file must be before the janitor
// deletes it.
const TempGrace = 10 * time.Minute

// Report summarises one EnforceBudget pass.
type Report struct {
	Scanned    int
	TotalBytes int64
	Removed    int
	FreedBytes int64
	Remaining  int64
	// StaleTemps counts abandoned Put temp files removed; their bytes are
	// part of TotalBytes and FreedBytes.
	StaleTemps int
	// Skipped is set when another process held the janitor lock.
	Skipped bool
}

// EnforceBudget deletes cache entries, oldest modification time first,
// until the directory holds at most maxBytes of entries. Entries with equal
// mtimes go in name order. A file that cannot be removed is skipped and the
// next candidate is tried. Put temp files older than TempGrace, left
// behind by a killed process, are always removed first.
//
// Recency is write time, not read time: a cache hit does not refresh an
// entry, so a thumbnail that is viewed often but never rewritten can be
// evicted before one written recently and never viewed. That imprecision
// is known and accepted.
func EnforceBudget(dir string, maxBytes int64) (Report, error) {
	var report Report

	lock := flock.New(filepath.Join(dir, LockName))
	locked, err := lock.TryLock()
	switch {
	case err != nil:
		logging.Debug("Cache janitor: lock unavailable (%v), continuing unlocked", err)
	case !locked:
		logging.Info("Cache janitor: another pixsort process is pruning %s, skipping", dir)
		report.Skipped = true
		metrics.JanitorRunsTotal.WithLabelValues("skipped").Inc()
		return report, nil
	default:
		defer func() {
			if err := lock.Unlock(); err != nil {
				logging.Warn("Cache janitor: failed to release lock: %v", err)
			}
		}()
	}

	entries, err := listEntries(dir)
	if err != nil {
		metrics.JanitorRunsTotal.WithLabelValues("error").Inc()
		return report, fmt.Errorf("enforce cache budget: %w", err)
	}

	report.Scanned = len(entries)
	for _, e := range entries {
		report.TotalBytes += e.Bytes
	}
	report.Remaining = report.TotalBytes

	stale, err := listStaleTemps(dir, time.Now().Add(-TempGrace))
	if err != nil {
		logging.Debug("Cache janitor: could not list temp files: %v", err)
	}
	for _, e := range stale {
		report.TotalBytes += e.Bytes
		if err := os.Remove(e.Path); err != nil {
			logging.Debug("Cache janitor: could not remove temp file %s: %v", e.Name, err)
			report.Remaining += e.Bytes
			continue
		}
		report.StaleTemps++
		report.FreedBytes += e.Bytes
	}
	if report.StaleTemps > 0 {
		logging.Info("Cache janitor: removed %d abandoned temp files", report.StaleTemps)
	}

	if report.Remaining <= maxBytes {
		metrics.JanitorFreedBytesTotal.Add(float64(report.FreedBytes))
		logging.Debug("Cache janitor: %s in %d entries, within budget of %s",
			humanize.IBytes(uint64(report.Remaining)), report.Scanned, humanize.IBytes(uint64(maxBytes)))
		metrics.JanitorRunsTotal.WithLabelValues("noop").Inc()
		return report, nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].ModTime.Before(entries[j].ModTime)
		}
		return entries[i].Name < entries[j].Name
	})

	for _, e := range entries {
		if report.Remaining <= maxBytes {
			break
		}
		if err := os.Remove(e.Path); err != nil {
			logging.Debug("Cache janitor: could not remove %s: %v", e.Name, err)
			continue
		}
		report.Removed++
		report.FreedBytes += e.Bytes
		report.Remaining -= e.Bytes
	}

	metrics.JanitorRunsTotal.WithLabelValues("pruned").Inc()
	metrics.JanitorRemovedTotal.Add(float64(report.Removed))
	metrics.JanitorFreedBytesTotal.Add(float64(report.FreedBytes))

	logging.Info("Cache janitor: removed %d of %d entries, freed %s, %s remaining (budget %s)",
		report.Removed, report.Scanned,
		humanize.IBytes(uint64(report.FreedBytes)),
		humanize.IBytes(uint64(report.Remaining)),
		humanize.IBytes(uint64(maxBytes)))

	return report, nil
}
