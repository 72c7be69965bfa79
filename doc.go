// Package main provides the entry point for pixsort.
//
// pixsort lists the images of one folder, shows them as a grid of
// thumbnails and lets the user put them in order. The chosen order is
// printed on exit for a rename step run elsewhere.
//
// # Application Lifecycle
//
//  1. Configuration Loading: defaults, TOML file, environment, then flags
//  2. Memory Configuration: sets GOMEMLIMIT from MEMORY_LIMIT if present
//  3. Cache Setup: creates the thumbnail directory and prunes it to budget
//  4. Component Initialization:
//     - Memory Monitor: pauses job dispatch under memory pressure
//     - Worker Pool: runs thumbnail jobs, CPUs - 1 at a time
//     - Metrics Server: Prometheus endpoint (if metrics_addr is set)
//  5. Presentation: the bubbletea grid, or headless output without a terminal
//  6. Shutdown: cancels the active load and stops background services
//
// # Commands
//
//   - pixsort [dir]: open dir (default ".") in the grid
//   - pixsort load [--headless] DIR: load DIR, printing one line per image when headless
//   - pixsort cache prune: run the cache janitor now
//   - pixsort cache stats: show cache entries and size
//   - pixsort version: print build information
//
// # Build Information
//
// Version, commit and build time are injected with ldflags:
//
//	go build -ldflags "-X pixsort/internal/startup.Version=1.0.0 -X pixsort/internal/startup.Commit=$(git rev-parse --short HEAD)"
package main
