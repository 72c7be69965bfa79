package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pixsort/internal/cache"
	"pixsort/internal/logging"
	"pixsort/internal/memory"
	"pixsort/internal/startup"
	"pixsort/internal/thumbnail"
)

// isolate points every config and cache location at temporary
// directories and returns the cache directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	for _, key := range []string{
		startup.EnvConfig, startup.EnvCacheMaxBytes, startup.EnvThumbSizes,
		startup.EnvDefaultSize, startup.EnvExtension, startup.EnvMetricsAddr,
	} {
		t.Setenv(key, "")
	}
	cacheDir := filepath.Join(home, "thumbs")
	t.Setenv(startup.EnvCacheDir, cacheDir)
	return cacheDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func TestHeadlessLoad(t *testing.T) {
	cacheDir := isolate(t)
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 300, 150)
	writePNG(t, filepath.Join(dir, "a.png"), 200, 200)
	if err := os.WriteFile(filepath.Join(dir, "c.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write c.png: %v", err)
	}

	out, err := execute(t, "load", "--headless", dir)
	if err != nil {
		t.Fatalf("load failed: %v\n%s", err, out)
	}

	want := []string{
		"a.png 80x80 rendered 150x150 rendered 200x200 rendered",
		"b.png 80x40 rendered 150x75 rendered 250x125 rendered",
		"c.png 80x80 placeholder 150x150 placeholder 250x250 placeholder",
	}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("output:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	// The second load is served from the cache
	out, err = execute(t, "--headless", dir)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if strings.Count(out, " cache") != 6 {
		t.Errorf("second load did not hit the cache:\n%s", out)
	}

	if _, entries, err := cache.NewStore(cacheDir).Stats(); err != nil || entries != 6 {
		t.Errorf("cache holds %d entries (err %v), want 6", entries, err)
	}
}

func TestHeadlessLoadMissingFolder(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "load", "--headless", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing folder")
	}
}

func TestHeadlessLoadEmptyFolder(t *testing.T) {
	isolate(t)
	out, err := execute(t, "load", "--headless", t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no output for an empty folder, got %q", out)
	}
}

func TestExtensionFlag(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 20, 20)
	if err := os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write b.jpg: %v", err)
	}

	out, err := execute(t, "load", "--headless", "--ext", "jpg", dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !strings.HasPrefix(out, "b.jpg ") || strings.Contains(out, "a.png") {
		t.Errorf("--ext jpg listed the wrong files:\n%s", out)
	}
}

func TestInvalidFlagsRejected(t *testing.T) {
	isolate(t)
	_, err := execute(t, "load", "--headless", "--size", "7", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "configuration error") {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestLogLevelFlag(t *testing.T) {
	if err := os.MkdirAll(isolate(t), 0o755); err != nil {
		t.Fatalf("Failed to create cache dir: %v", err)
	}
	original := logging.GetLevel()
	defer logging.SetLevel(original)

	if _, err := execute(t, "cache", "stats", "--log-level", "loud"); err == nil || !strings.Contains(err.Error(), "unknown log level") {
		t.Errorf("expected an unknown log level error, got %v", err)
	}

	if _, err := execute(t, "cache", "stats", "--log-level", "warn"); err != nil {
		t.Fatalf("cache stats --log-level warn: %v", err)
	}
	if got := logging.GetLevel(); got != logging.LevelWarn {
		t.Errorf("level = %v after --log-level warn, want warn", got)
	}
}

func TestCacheStatsAndPrune(t *testing.T) {
	cacheDir := isolate(t)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatalf("Failed to create cache dir: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	for i, source := range []string{"/photos/a.png", "/photos/b.png", "/photos/c.png"} {
		id := cache.DeriveIdentity(source, old, int64(i))
		path := filepath.Join(cacheDir, cache.EntryName(id, 150))
		if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
		mtime := old.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	out, err := execute(t, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(out, "Entries:   3") || !strings.Contains(out, "Size:      3.0 KiB") {
		t.Errorf("unexpected stats:\n%s", out)
	}

	t.Setenv(startup.EnvCacheMaxBytes, "1500")
	out, err = execute(t, "cache", "prune")
	if err != nil {
		t.Fatalf("cache prune failed: %v", err)
	}
	if !strings.Contains(out, "Removed 2 of 3 entries") {
		t.Errorf("unexpected prune output:\n%s", out)
	}

	_, entries, err := cache.NewStore(cacheDir).Stats()
	if err != nil || entries != 1 {
		t.Errorf("%d entries left after prune (err %v), want 1", entries, err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, startup.Version) || !strings.HasPrefix(out, "pixsort ") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestDescribeSet(t *testing.T) {
	set := thumbnail.PlaceholderSet("/photos/x.png", []int{10, 20}, 0)
	set.Sources[1] = thumbnail.SourceCache
	if got, want := describeSet(set), "x.png 10x10 placeholder 20x20 cache"; got != want {
		t.Errorf("describeSet() = %q, want %q", got, want)
	}
}

func TestRedirectLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pixsort.log")
	restore := redirectLogs(path)
	restore()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file was not created: %v", err)
	}
}

func TestMemoryState(t *testing.T) {
	if got := memoryState(nil); got != "no limit" {
		t.Errorf("memoryState(nil) = %q, want no limit", got)
	}
	m := memory.NewMonitor(memory.Config{MemoryLimitBytes: 1 << 40})
	if got := memoryState(m); got != "0% of 1.0 TiB" {
		t.Errorf("memoryState() = %q, want 0%% of 1.0 TiB", got)
	}
}

func TestPipelineCloseLogsShutdown(t *testing.T) {
	isolate(t)
	cfg, err := startup.LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	var logs bytes.Buffer
	logging.SetOutput(&logs)
	defer logging.SetOutput(os.Stderr)

	p := startPipeline(context.Background(), cfg)
	p.Close("test")

	out := logs.String()
	for _, want := range []string{"SHUTDOWN (test)", "Memory monitor stopped (", "Shutdown complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("shutdown log is missing %q", want)
		}
	}
}
