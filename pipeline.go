package main

import (
	"context"
	"fmt"
	"time"

	"pixsort/internal/cache"
	"pixsort/internal/filesystem"
	"pixsort/internal/logging"
	"pixsort/internal/memory"
	"pixsort/internal/metrics"
	"pixsort/internal/scheduler"
	"pixsort/internal/startup"
	"pixsort/internal/thumbnail"

	"github.com/dustin/go-humanize"
)

const cacheStatsInterval = 30 * time.Second

// pipeline owns everything a load needs: the cache, the producer, the
// worker pool and the optional metrics listener.
type pipeline struct {
	store     *cache.Store
	producer  *thumbnail.Producer
	pool      *scheduler.Pool
	monitor   *memory.Monitor
	collector *metrics.Collector
	stop      context.CancelFunc
	started   time.Time
}

func startPipeline(ctx context.Context, cfg *startup.Config) *pipeline {
	p := &pipeline{started: time.Now()}

	memory.ConfigureFromEnv()
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	metrics.InitializeMetrics()
	build := startup.GetBuildInfo()
	metrics.SetAppInfo(build.Version, build.Commit, build.GoVersion)

	startup.LogConfig(cfg)

	var store thumbnail.Cache
	if startup.PrepareCacheDir(cfg) {
		p.store = cache.NewStore(cfg.CacheDir)
		store = p.store
		startup.LogJanitorReport(cache.EnforceBudget(cfg.CacheDir, cfg.CacheMaxBytes))
	}

	p.producer = thumbnail.NewProducer(store, cfg.ThumbSizes, cfg.DefaultSizeIndex)

	p.monitor = memory.NewMonitor(memory.DefaultConfig())
	p.monitor.Start()

	p.pool = scheduler.New(cfg.Workers, p.monitor).WithFallback(func(job scheduler.Job) thumbnail.Set {
		return p.producer.Placeholder(job.Path)
	})

	ctx, p.stop = context.WithCancel(ctx)
	if cfg.MetricsAddr != "" {
		router := metrics.NewRouter()
		startup.LogMetricsServer(router, cfg.MetricsAddr)
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, router); err != nil {
				logging.Error("Metrics server error: %v", err)
			}
		}()

		if p.store != nil {
			p.collector = metrics.NewCollector(p.store, cacheStatsInterval)
			p.collector.Start()
		}
	}

	return p
}

// run is the pool's RunFunc.
func (p *pipeline) run(job scheduler.Job) thumbnail.Set {
	return p.producer.Produce(job.Path)
}

// Close stops the background services. Jobs still running finish on
// their own; nothing waits for them.
func (p *pipeline) Close(reason string) {
	startup.LogShutdownInitiated(reason)

	if p.collector != nil {
		p.collector.Stop()
		startup.LogShutdownStepComplete("Cache metrics collector stopped")
	}

	p.stop()
	startup.LogShutdownStepComplete("Metrics server stopped")

	state := memoryState(p.monitor)
	p.monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped (" + state + ")")

	startup.LogShutdownComplete(time.Since(p.started))
}

func memoryState(m *memory.Monitor) string {
	usage := m.GetUsage()
	switch {
	case m.Limit() == 0:
		return "no limit"
	case m.IsPaused():
		return fmt.Sprintf("dispatch paused at %.0f%% of %s", usage*100, humanize.IBytes(uint64(m.Limit())))
	default:
		return fmt.Sprintf("%.0f%% of %s", usage*100, humanize.IBytes(uint64(m.Limit())))
	}
}
