package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pixsort/internal/cache"
)

func newCacheCommand(opts *options) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the thumbnail cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(opts))
	cacheCmd.AddCommand(newCachePruneCommand(opts))

	return cacheCmd
}

func newCachePruneCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete the oldest thumbnails until the cache fits its budget",
		Long: `Delete cache entries, oldest written first, until the cache is within
cache_max_bytes. The same pass runs every time pixsort starts.

Example:
  PIXSORT_CACHE_MAX_BYTES=50MiB pixsort cache prune`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			report, err := cache.EnforceBudget(cfg.CacheDir, cfg.CacheMaxBytes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.Skipped {
				fmt.Fprintln(out, "Skipped: another pixsort is pruning the cache")
				return nil
			}
			if report.StaleTemps > 0 {
				fmt.Fprintf(out, "Removed %d abandoned temp files\n", report.StaleTemps)
			}
			fmt.Fprintf(out, "Removed %d of %d entries, freed %s, %s left (budget %s)\n",
				report.Removed, report.Scanned,
				humanize.IBytes(uint64(report.FreedBytes)),
				humanize.IBytes(uint64(report.Remaining)),
				humanize.IBytes(uint64(cfg.CacheMaxBytes)))
			return nil
		},
	}
}

func newCacheStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the size of the thumbnail cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			size, entries, err := cache.NewStore(cfg.CacheDir).Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Directory: %s\n", cfg.CacheDir)
			fmt.Fprintf(out, "Entries:   %s\n", humanize.Comma(int64(entries)))
			fmt.Fprintf(out, "Size:      %s of %s\n", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(cfg.CacheMaxBytes)))
			return nil
		},
	}
}
