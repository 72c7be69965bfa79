// Package filesystem provides utilities for filesystem operations with retry logic for NFS
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"pixsort/internal/logging"
)

// Volume labels used for metrics.
const (
	VolumeSource = "source"
	VolumeCache  = "cache"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Volume labels the operation for metrics ("source" or "cache").
	Volume string
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig(volume string) RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		Volume:         volume,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE is errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry(config, "stat", path, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// ReadDirWithRetry performs os.ReadDir with retry logic for NFS stale file handle errors
func ReadDirWithRetry(path string, config RetryConfig) ([]os.DirEntry, error) {
	return withRetry(config, "readdir", path, func() ([]os.DirEntry, error) {
		return os.ReadDir(path)
	})
}

func withRetry[T any](config RetryConfig, op, path string, fn func() (T, error)) (T, error) {
	start := time.Now()
	obs := observe()
	backoff := config.InitialBackoff

	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				if obs != nil {
					obs.ObserveRetrySuccess(op, config.Volume)
				}
			}
			if obs != nil {
				obs.ObserveOperation(config.Volume, op, time.Since(start).Seconds(), nil)
			}
			return result, nil
		}

		lastErr = err

		// Only retry on NFS stale file handle errors
		if !isNFSStaleError(err) {
			if obs != nil {
				obs.ObserveOperation(config.Volume, op, time.Since(start).Seconds(), err)
			}
			return zero, err
		}

		if obs != nil {
			obs.ObserveStaleError(op, config.Volume)
		}

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			if obs != nil {
				obs.ObserveRetryAttempt(op, config.Volume)
			}
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			// Exponential backoff with cap
			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	if obs != nil {
		obs.ObserveRetryFailure(op, config.Volume)
		obs.ObserveOperation(config.Volume, op, time.Since(start).Seconds(), lastErr)
	}
	return zero, lastErr
}
