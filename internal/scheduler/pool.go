package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"pixsort/internal/logging"
	"pixsort/internal/metrics"
	"pixsort/internal/thumbnail"
)

// Job is one source image to produce previews for. Index is the job's
// position in the submitted batch.
type Job struct {
	Index int
	Path  string
}

// RunFunc produces the preview set for one job. It runs on a worker
// goroutine.
type RunFunc func(Job) thumbnail.Set

// Waiter gates job dispatch, typically on memory pressure. WaitIfPaused
// returns false when ctx ends while waiting.
type Waiter interface {
	WaitIfPaused(ctx context.Context) bool
}

// Pool bounds how many jobs run at once. A Pool may serve any number of
// SubmitAll calls; each batch gets its own worker goroutines, but every
// batch draws from the same set of run slots. A cancelled batch whose
// jobs are still running keeps holding its slots until they return.
type Pool struct {
	workers  int
	slots    chan struct{}
	monitor  Waiter
	fallback RunFunc
}

// New creates a pool running at most workers jobs concurrently across
// all batches. monitor may be nil.
func New(workers int, monitor Waiter) *Pool {
	if workers < 1 {
		workers = 1
	}
	metrics.WorkersConfigured.Set(float64(workers))
	return &Pool{
		workers:  workers,
		slots:    make(chan struct{}, workers),
		monitor:  monitor,
		fallback: defaultFallback,
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// WithFallback sets the function used to build a result for a job whose
// RunFunc panicked. The default is a placeholder set at the default sizes.
func (p *Pool) WithFallback(fn RunFunc) *Pool {
	if fn != nil {
		p.fallback = fn
	}
	return p
}

func defaultFallback(job Job) thumbnail.Set {
	return thumbnail.PlaceholderSet(job.Path, thumbnail.DefaultSizes, thumbnail.DefaultSelected)
}

// SubmitAll queues jobs in order and starts min(workers, len(jobs))
// goroutines to run them. Job i's result is stored in slot i regardless
// of the Index field.
func (p *Pool) SubmitAll(jobs []Job, run RunFunc) *Handle {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Handle{
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan queued, len(jobs)),
		results:  make([]thumbnail.Set, len(jobs)),
		done:     make([]atomic.Bool, len(jobs)),
		finished: make(chan int, len(jobs)),
		slots:    p.slots,
		run:      run,
		fallback: p.fallback,
		monitor:  p.monitor,
	}

	for i, job := range jobs {
		h.queue <- queued{slot: i, job: job}
	}
	close(h.queue)

	n := min(p.workers, len(jobs))
	logging.Debug("Scheduler: %d jobs on %d workers", len(jobs), n)

	for i := 0; i < n; i++ {
		h.wg.Add(1)
		go h.worker(i)
	}

	go func() {
		h.wg.Wait()
		close(h.finished)
	}()

	return h
}

type queued struct {
	slot int
	job  Job
}

// Handle tracks one submitted batch.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc

	queue    chan queued
	results  []thumbnail.Set
	done     []atomic.Bool
	finished chan int
	slots    chan struct{}

	run      RunFunc
	fallback RunFunc
	monitor  Waiter

	wg      sync.WaitGroup
	dropped atomic.Int64
}

// Len returns the number of jobs in the batch.
func (h *Handle) Len() int {
	return len(h.results)
}

// Done reports whether job i has finished. It never blocks.
func (h *Handle) Done(i int) bool {
	if i < 0 || i >= len(h.done) {
		return false
	}
	return h.done[i].Load()
}

// Result returns job i's set once Done(i) is true.
func (h *Handle) Result(i int) (thumbnail.Set, bool) {
	if !h.Done(i) {
		return thumbnail.Set{}, false
	}
	return h.results[i], true
}

// Finished delivers each completed index exactly once, in completion
// order. It is buffered to the batch size so workers never block on it,
// and closed once every worker has exited.
func (h *Handle) Finished() <-chan int {
	return h.finished
}

// Cancel drops every job that has not started. It is safe to call more
// than once and from any goroutine.
func (h *Handle) Cancel() {
	h.cancel()
}

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool {
	return h.ctx.Err() != nil
}

// Dropped returns how many jobs were skipped because of cancellation.
func (h *Handle) Dropped() int {
	return int(h.dropped.Load())
}

// Wait blocks until all workers have exited.
func (h *Handle) Wait() {
	h.wg.Wait()
}

func (h *Handle) worker(id int) {
	defer h.wg.Done()

	for q := range h.queue {
		if !h.ready() || !h.acquire() {
			h.dropped.Add(1)
			metrics.JobsTotal.WithLabelValues("dropped").Inc()
			continue
		}

		set := h.execute(q.job)
		<-h.slots

		h.results[q.slot] = set
		h.done[q.slot].Store(true)
		h.finished <- q.slot
	}

	logging.Debug("Scheduler: worker %d finished", id)
}

// ready waits out a memory pause and reports whether the batch is still
// live.
func (h *Handle) ready() bool {
	if h.ctx.Err() != nil {
		return false
	}
	if h.monitor != nil {
		h.monitor.WaitIfPaused(h.ctx)
	}
	return h.ctx.Err() == nil
}

// acquire takes a pool-wide run slot. It gives up when the batch is
// cancelled while waiting.
func (h *Handle) acquire() bool {
	select {
	case h.slots <- struct{}{}:
	case <-h.ctx.Done():
		return false
	}
	if h.ctx.Err() != nil {
		<-h.slots
		return false
	}
	return true
}

func (h *Handle) execute(job Job) (set thumbnail.Set) {
	metrics.WorkersBusy.Inc()
	defer metrics.WorkersBusy.Dec()

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Scheduler: job %d (%s) panicked: %v\n%s", job.Index, job.Path, r, debug.Stack())
			metrics.JobsTotal.WithLabelValues("failed").Inc()
			set = h.fallback(job)
		}
	}()

	set = h.run(job)
	if set.Failed {
		metrics.JobsTotal.WithLabelValues("failed").Inc()
	} else {
		metrics.JobsTotal.WithLabelValues("succeeded").Inc()
	}
	return set
}

func (h *Handle) String() string {
	return fmt.Sprintf("batch of %d (dropped %d, cancelled %v)", h.Len(), h.Dropped(), h.Cancelled())
}
