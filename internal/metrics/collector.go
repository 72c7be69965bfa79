package metrics

import (
	"time"

	"pixsort/internal/logging"
)

// StatsProvider reports the current size of the thumbnail cache.
type StatsProvider interface {
	Stats() (bytes int64, entries int, err error)
}

// Collector periodically collects and updates cache gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	size, entries, err := c.statsProvider.Stats()
	if err != nil {
		logging.Debug("Metrics collection skipped: %v", err)
		return
	}

	CacheSizeBytes.Set(float64(size))
	CacheEntries.Set(float64(entries))

	logging.Debug("Metrics collected: cache entries=%d, bytes=%d", entries, size)
}
