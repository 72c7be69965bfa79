package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pixsort/internal/logging"
	"pixsort/internal/media"
	"pixsort/internal/session"
	"pixsort/internal/thumbnail"
	"pixsort/internal/workers"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables
const (
	EnvConfig        = "PIXSORT_CONFIG"
	EnvCacheDir      = "PIXSORT_CACHE_DIR"
	EnvCacheMaxBytes = "PIXSORT_CACHE_MAX_BYTES"
	EnvThumbSizes    = "PIXSORT_THUMB_SIZES"
	EnvDefaultSize   = "PIXSORT_DEFAULT_SIZE"
	EnvPollInterval  = "PIXSORT_POLL_INTERVAL"
	EnvBatchSize     = "PIXSORT_BATCH_SIZE"
	EnvExtension     = "PIXSORT_EXTENSION"
	EnvMetricsAddr   = "PIXSORT_METRICS_ADDR"
	EnvLogFile       = "PIXSORT_LOG_FILE"
)

// DefaultCacheMaxBytes is the janitor's budget when none is configured.
const DefaultCacheMaxBytes int64 = 200 * 1024 * 1024

// Config holds all application configuration
type Config struct {
	CacheDir         string
	CacheMaxBytes    int64
	ThumbSizes       []int
	DefaultSizeIndex int
	PollInterval     time.Duration
	BatchSize        int
	Extension        string
	MetricsAddr      string
	LogFile          string
	Workers          int

	// ConfigFile is the TOML file that was read, empty if none
	ConfigFile string

	// CacheEnabled is false when the cache directory is not writable
	CacheEnabled bool
}

// fileConfig mirrors the TOML layout. Pointer fields distinguish an absent
// key from a zero value.
type fileConfig struct {
	CacheDir         *string `toml:"cache_dir"`
	CacheMaxBytes    any     `toml:"cache_max_bytes"` // integer or "200MiB"
	ThumbSizes       []int   `toml:"thumb_sizes"`
	DefaultSizeIndex *int    `toml:"default_size_index"`
	PollInterval     *string `toml:"poll_interval"`
	BatchSize        *int    `toml:"batch_size"`
	Extension        *string `toml:"extension"`
	MetricsAddr      *string `toml:"metrics_addr"`
	LogFile          *string `toml:"log_file"`
	Workers          *int    `toml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CacheDir:         defaultCacheDir(),
		CacheMaxBytes:    DefaultCacheMaxBytes,
		ThumbSizes:       append([]int(nil), thumbnail.DefaultSizes...),
		DefaultSizeIndex: thumbnail.DefaultSelected,
		PollInterval:     session.DefaultInterval,
		BatchSize:        session.DefaultBatchSize,
		Extension:        ".png",
		Workers:          workers.ForPresentation(0),
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pixsort", "thumbnails")
	}
	return filepath.Join(os.TempDir(), "pixsort", "thumbnails")
}

// DefaultConfigPath is where LoadConfig looks for a file when neither a
// path nor PIXSORT_CONFIG is given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pixsort", "config.toml")
}

// LoadConfig builds the configuration from defaults, then the TOML file,
// then environment variables, then overrides (command-line flags), and
// validates the result. An explicitly named file must exist; the default
// location is optional.
func LoadConfig(path string, overrides func(*Config)) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultConfigPath()
		explicit = false
	}

	if path != "" {
		read, err := applyFile(&cfg, path)
		switch {
		case err == nil && read:
			cfg.ConfigFile = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return nil, err
		}
	}

	applyEnv(&cfg)

	if overrides != nil {
		overrides(&cfg)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFile(cfg *Config, path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fc); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.CacheDir != nil {
		cfg.CacheDir = *fc.CacheDir
	}
	switch v := fc.CacheMaxBytes.(type) {
	case nil:
	case int64:
		cfg.CacheMaxBytes = v
	case string:
		n, err := parseBytes(v)
		if err != nil {
			return false, fmt.Errorf("config cache_max_bytes: %w", err)
		}
		cfg.CacheMaxBytes = n
	default:
		return false, fmt.Errorf("config cache_max_bytes: unsupported value %v", v)
	}
	if fc.ThumbSizes != nil {
		cfg.ThumbSizes = fc.ThumbSizes
	}
	if fc.DefaultSizeIndex != nil {
		cfg.DefaultSizeIndex = *fc.DefaultSizeIndex
	}
	if fc.PollInterval != nil {
		d, err := time.ParseDuration(*fc.PollInterval)
		if err != nil {
			return false, fmt.Errorf("config poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if fc.BatchSize != nil {
		cfg.BatchSize = *fc.BatchSize
	}
	if fc.Extension != nil {
		cfg.Extension = *fc.Extension
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Workers != nil && *fc.Workers > 0 {
		cfg.Workers = *fc.Workers
	}
	return true, nil
}

// applyEnv overlays environment variables. Unparseable values are logged
// and ignored, like the rest of the env handling.
func applyEnv(cfg *Config) {
	cfg.CacheDir = getEnv(EnvCacheDir, cfg.CacheDir)
	cfg.Extension = getEnv(EnvExtension, cfg.Extension)
	cfg.MetricsAddr = getEnv(EnvMetricsAddr, cfg.MetricsAddr)
	cfg.LogFile = getEnv(EnvLogFile, cfg.LogFile)

	if v := os.Getenv(EnvCacheMaxBytes); v != "" {
		if n, err := parseBytes(v); err == nil {
			cfg.CacheMaxBytes = n
		} else {
			logging.Warn("Invalid %s %q, using %s", EnvCacheMaxBytes, v, humanize.IBytes(uint64(cfg.CacheMaxBytes)))
		}
	}
	if v := os.Getenv(EnvThumbSizes); v != "" {
		if sizes, err := parseSizes(v); err == nil {
			cfg.ThumbSizes = sizes
		} else {
			logging.Warn("Invalid %s %q: %v", EnvThumbSizes, v, err)
		}
	}
	cfg.DefaultSizeIndex = getEnvInt(EnvDefaultSize, cfg.DefaultSizeIndex)
	cfg.BatchSize = getEnvInt(EnvBatchSize, cfg.BatchSize)
	cfg.PollInterval = getEnvDuration(EnvPollInterval, cfg.PollInterval)

	// PIXSORT_WORKERS is read by the workers package
	if os.Getenv(workers.EnvOverride) != "" {
		cfg.Workers = workers.ForPresentation(0)
	}
}

func (c *Config) normalize() error {
	c.Extension = media.NormalizeExtension(c.Extension)
	if c.CacheDir != "" {
		abs, err := filepath.Abs(c.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to resolve cache directory path: %w", err)
		}
		c.CacheDir = abs
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("cache_dir must be set")
	}
	if c.CacheMaxBytes < 0 {
		return errors.New("cache_max_bytes must not be negative")
	}
	if len(c.ThumbSizes) == 0 {
		return errors.New("thumb_sizes must list at least one size")
	}
	for _, s := range c.ThumbSizes {
		if s <= 0 {
			return fmt.Errorf("thumb_sizes: %d is not a positive size", s)
		}
	}
	if c.DefaultSizeIndex < 0 || c.DefaultSizeIndex >= len(c.ThumbSizes) {
		return fmt.Errorf("default_size_index %d out of range for %d sizes", c.DefaultSizeIndex, len(c.ThumbSizes))
	}
	if c.BatchSize < 1 {
		return errors.New("batch_size must be at least 1")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.Extension == "" || c.Extension == "." {
		return errors.New("extension must be set")
	}
	return nil
}

// SessionConfig returns the poller settings.
func (c *Config) SessionConfig() session.Config {
	return session.Config{BatchSize: c.BatchSize, Interval: c.PollInterval}
}

// DefaultLogFile is used by the interactive mode when LogFile is empty:
// a pixsort.log next to the thumbnail directory.
func (c *Config) DefaultLogFile() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(filepath.Dir(c.CacheDir), "pixsort.log")
}

func parseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, errors.New("no sizes")
	}
	return sizes, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
