package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"pixsort/internal/cache"
	"pixsort/internal/logging"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("pixsort %s (commit %s, built %s, %s %s/%s)",
		b.Version, b.Commit, b.BuildTime, b.GoVersion, b.OS, b.Arch)
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// LogConfig writes the banner, system information and the effective
// configuration to the log.
func LogConfig(cfg *Config) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if cfg.ConfigFile != "" {
		logging.Info("  Config file:         %s", cfg.ConfigFile)
	} else {
		logging.Info("  Config file:         (none)")
	}
	logging.Info("  CACHE_DIR:           %s", cfg.CacheDir)
	logging.Info("  CACHE_MAX_BYTES:     %s", humanize.IBytes(uint64(cfg.CacheMaxBytes)))
	logging.Info("  THUMB_SIZES:         %s", joinInts(cfg.ThumbSizes))
	logging.Info("  DEFAULT_SIZE:        %d (%dpx)", cfg.DefaultSizeIndex, cfg.ThumbSizes[cfg.DefaultSizeIndex])
	logging.Info("  POLL_INTERVAL:       %v", cfg.PollInterval)
	logging.Info("  BATCH_SIZE:          %d", cfg.BatchSize)
	logging.Info("  EXTENSION:           %s", cfg.Extension)
	logging.Info("  WORKERS:             %d", cfg.Workers)
	if cfg.MetricsAddr != "" {
		logging.Info("  METRICS_ADDR:        %s", cfg.MetricsAddr)
	} else {
		logging.Info("  METRICS_ADDR:        (disabled)")
	}
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("")
}

// PrepareCacheDir creates the cache directory and checks that it is
// writable. When it is not, thumbnails are still produced but never
// cached.
func PrepareCacheDir(cfg *Config) bool {
	logging.Info("------------------------------------------------------------")
	logging.Info("CACHE SETUP")
	logging.Info("------------------------------------------------------------")

	cfg.CacheEnabled = setupOptionalDir(cfg.CacheDir, "thumbnail cache")
	logging.Info("    Thumbnail cache: %s", enabledString(cfg.CacheEnabled))
	return cfg.CacheEnabled
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := ensureDirectory(path, name); err != nil {
		logging.Warn("    %v", err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogJanitorReport logs the outcome of a cache budget pass.
func LogJanitorReport(report cache.Report, err error) {
	if err != nil {
		logging.Warn("  Cache janitor failed: %v", err)
		return
	}
	if report.Skipped {
		logging.Info("  Cache janitor skipped (another pixsort holds the lock)")
		return
	}
	logging.Info("  [OK] Cache: %d entries, %s (removed %d, freed %s)",
		report.Scanned-report.Removed,
		humanize.IBytes(uint64(report.Remaining)),
		report.Removed,
		humanize.IBytes(uint64(report.FreedBytes)))
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes, err
}

// LogMetricsServer logs the metrics listener and, at debug level, its
// routes.
func LogMetricsServer(router *mux.Router, addr string) {
	logging.Info("------------------------------------------------------------")
	logging.Info("METRICS SERVER")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Listening on %s", addr)

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}
		for _, route := range routes {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(reason string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN (%s)", reason)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete(uptime time.Duration) {
	logging.Info("  [OK] Shutdown complete after %v", uptime.Round(time.Second))
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
        _                      _
  _ __ (_)_  _____  ___  _ __| |_
 | '_ \| \ \/ / __|/ _ \| '__| __|
 | |_) | |>  <\__ \ (_) | |  | |_
 | .__/|_/_/\_\___/\___/|_|   \__|
 |_|
------------------------------------------------------------`
	for _, line := range strings.Split(banner, "\n") {
		logging.Info("%s", line)
	}
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
