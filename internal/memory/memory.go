package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"pixsort/internal/logging"
	"pixsort/internal/metrics"
)

// Config holds memory management configuration
type Config struct {
	// MemoryLimitBytes is the soft memory limit (0 = use GOMEMLIMIT or no limit)
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit below which a paused
	// monitor resumes dispatch (0.0-1.0)
	HighWaterMark float64

	// CriticalWaterMark is the fraction at which job dispatch pauses (0.0-1.0)
	CriticalWaterMark float64

	// CheckInterval is how often to sample heap usage
	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for memory management
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     2 * time.Second,
	}
}

// Monitor samples heap usage and gates job dispatch while it is critical.
// A nil *Monitor never blocks.
type Monitor struct {
	config  Config
	limit   int64
	sample  func() uint64
	stopped chan struct{}
	once    sync.Once

	mu        sync.RWMutex
	current   uint64
	isPaused  bool
	pauseChan chan struct{}
}

// NewMonitor creates a new memory monitor
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Debug("Memory monitor using GOMEMLIMIT: %d bytes", limit)
		}
	}

	if limit == 0 {
		logging.Debug("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		sample:    heapAlloc,
		stopped:   make(chan struct{}),
		pauseChan: make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins monitoring memory usage
func (m *Monitor) Start() {
	if m == nil || m.limit == 0 {
		return
	}
	go m.monitorLoop()
}

// Stop stops the monitor and releases every waiter.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.once.Do(func() { close(m.stopped) })
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopped:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	alloc := m.sample()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = alloc
	if m.limit <= 0 {
		return
	}

	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case usage >= m.config.CriticalWaterMark && !m.isPaused:
		logging.Warn("Memory critical (%.1f%% of limit), pausing thumbnail dispatch", usage*100)
		m.isPaused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case usage < m.config.HighWaterMark && m.isPaused:
		logging.Info("Memory recovered (%.1f%% of limit), resuming thumbnail dispatch", usage*100)
		m.isPaused = false
		metrics.MemoryPaused.Set(0)
		close(m.pauseChan)
		m.pauseChan = make(chan struct{})
	}
}

// WaitIfPaused blocks while memory usage is critical. It returns false if
// ctx is cancelled or the monitor stops while waiting.
func (m *Monitor) WaitIfPaused(ctx context.Context) bool {
	if m == nil {
		return ctx.Err() == nil
	}

	m.mu.RLock()
	if !m.isPaused {
		m.mu.RUnlock()
		return ctx.Err() == nil
	}
	pauseChan := m.pauseChan
	m.mu.RUnlock()

	select {
	case <-pauseChan:
		return true
	case <-ctx.Done():
		return false
	case <-m.stopped:
		return false
	}
}

// IsPaused returns true if dispatch is currently paused
func (m *Monitor) IsPaused() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// Limit returns the limit usage is measured against, 0 when backpressure
// is disabled.
func (m *Monitor) Limit() int64 {
	if m == nil {
		return 0
	}
	return m.limit
}

// GetUsage returns current usage as a fraction of the limit (0 without a limit)
func (m *Monitor) GetUsage() float64 {
	if m == nil || m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}
