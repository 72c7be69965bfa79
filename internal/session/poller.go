package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"pixsort/internal/logging"
	"pixsort/internal/metrics"
	"pixsort/internal/scheduler"
	"pixsort/internal/thumbnail"
)

// ErrCancelled is returned by Run when the session was cancelled.
var ErrCancelled = errors.New("load cancelled")

// ErrNoSession is returned by Run when nothing was started.
var ErrNoSession = errors.New("no active load")

const (
	// DefaultBatchSize caps how many results one tick converts.
	DefaultBatchSize = 10
	// DefaultInterval is the tick cadence, about one frame at 60Hz.
	DefaultInterval = 16 * time.Millisecond
)

// Config tunes the poller.
type Config struct {
	BatchSize int
	Interval  time.Duration
}

// DefaultConfig returns a batch of 10 every 16ms.
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize, Interval: DefaultInterval}
}

// State is the poller's lifecycle position.
type State int

const (
	// StateIdle: no session.
	StateIdle State = iota
	// StateLoading: workers are still producing.
	StateLoading
	// StateDraining: every job has finished; ticks are only harvesting.
	StateDraining
	// StateCancelling: cancel was requested; the next tick tears down.
	StateCancelling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDraining:
		return "draining"
	case StateCancelling:
		return "cancelling"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// EventKind says what a tick did.
type EventKind int

const (
	EventIdle EventKind = iota
	EventProgress
	EventCompleted
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventIdle:
		return "idle"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Event is the outcome of one Tick. Results is set only for
// EventCompleted, in submission order.
type Event[H any] struct {
	Kind      EventKind
	Completed int
	Total     int
	Harvested int
	Results   []H
}

// Poller connects the worker pool to a single-threaded presentation
// layer. Start, Tick, Progress and State belong to the presentation
// goroutine; Cancel may be called from anywhere.
type Poller[H any] struct {
	pool    *scheduler.Pool
	run     scheduler.RunFunc
	convert func(thumbnail.Set) H
	cfg     Config

	current atomic.Pointer[LoadSession[H]]
}

// NewPoller returns an idle poller. run produces a set on a worker;
// convert turns it into a display handle on the presentation goroutine.
func NewPoller[H any](pool *scheduler.Pool, run scheduler.RunFunc, convert func(thumbnail.Set) H, cfg Config) *Poller[H] {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller[H]{
		pool:    pool,
		run:     run,
		convert: convert,
		cfg:     cfg,
	}
}

// Config returns the effective configuration.
func (p *Poller[H]) Config() Config {
	return p.cfg
}

// Start tears down any active session and begins loading paths, one job
// per path in order. An empty list completes on the next tick.
//
// Start never waits on the previous session. Its running jobs finish in
// the background and keep their pool slots until they return, so the new
// session's jobs only start as slots free up.
func (p *Poller[H]) Start(paths []string) *LoadSession[H] {
	if prev := p.current.Load(); prev != nil {
		logging.Debug("Session %s superseded after %d/%d", prev.ID, prev.Completed, prev.Total)
		p.teardown(prev, "superseded")
	}

	s := newLoadSession[H](paths)
	jobs := make([]scheduler.Job, len(paths))
	for i, path := range paths {
		jobs[i] = scheduler.Job{Index: i, Path: path}
	}
	s.handle = p.pool.SubmitAll(jobs, p.run)
	p.current.Store(s)

	logging.Info("Session %s: loading %d images on %d workers", s.ID, s.Total, min(p.pool.Workers(), s.Total))
	return s
}

// Cancel requests cancellation of the active session, if any.
func (p *Poller[H]) Cancel() {
	if s := p.current.Load(); s != nil {
		s.Cancel()
	}
}

// Session returns the active session or nil.
func (p *Poller[H]) Session() *LoadSession[H] {
	return p.current.Load()
}

// Active reports whether a session exists.
func (p *Poller[H]) Active() bool {
	return p.current.Load() != nil
}

// Progress returns (completed, total) of the active session, or (0, 0).
func (p *Poller[H]) Progress() (int, int) {
	s := p.current.Load()
	if s == nil {
		return 0, 0
	}
	return s.Completed, s.Total
}

// State returns the lifecycle state.
func (p *Poller[H]) State() State {
	s := p.current.Load()
	switch {
	case s == nil:
		return StateIdle
	case s.Cancelled():
		return StateCancelling
	case s.Completed+len(s.handle.Finished()) >= s.Total:
		return StateDraining
	default:
		return StateLoading
	}
}

// Tick advances the active session by at most one batch.
func (p *Poller[H]) Tick() Event[H] {
	s := p.current.Load()
	if s == nil {
		return Event[H]{Kind: EventIdle}
	}

	if s.Cancelled() {
		completed, total := s.Completed, s.Total
		p.teardown(s, "cancelled")
		logging.Info("Session %s cancelled at %d/%d", s.ID, completed, total)
		return Event[H]{Kind: EventCancelled, Completed: completed, Total: total}
	}

	harvested := p.harvest(s)
	metrics.PollHarvested.Observe(float64(harvested))

	if s.Completed >= s.Total {
		results := s.compact()
		p.teardown(s, "completed")
		logging.Info("Session %s completed: %d images in %v", s.ID, s.Total, time.Since(s.Started).Round(time.Millisecond))
		return Event[H]{
			Kind:      EventCompleted,
			Completed: s.Total,
			Total:     s.Total,
			Harvested: harvested,
			Results:   results,
		}
	}

	return Event[H]{
		Kind:      EventProgress,
		Completed: s.Completed,
		Total:     s.Total,
		Harvested: harvested,
	}
}

func (p *Poller[H]) harvest(s *LoadSession[H]) int {
	finished := s.handle.Finished()
	n := 0
	for n < p.cfg.BatchSize {
		select {
		case idx, ok := <-finished:
			if !ok {
				return n
			}
			set, _ := s.handle.Result(idx)
			s.store(idx, p.convert(set))
			n++
		default:
			return n
		}
	}
	return n
}

// teardown cancels outstanding jobs, discards results and, if s is still
// current, returns the poller to idle.
func (p *Poller[H]) teardown(s *LoadSession[H], outcome string) {
	if s.handle != nil {
		s.handle.Cancel()
	}
	s.drop()
	p.current.CompareAndSwap(s, nil)

	metrics.SessionsTotal.WithLabelValues(outcome).Inc()
	metrics.SessionDuration.WithLabelValues(outcome).Observe(time.Since(s.Started).Seconds())
}

// Run drives the active session from the calling goroutine until it
// completes or is cancelled. Cancelling ctx cancels the session.
func (p *Poller[H]) Run(ctx context.Context) ([]H, error) {
	if !p.Active() {
		return nil, ErrNoSession
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		ev := p.Tick()
		switch ev.Kind {
		case EventCompleted:
			return ev.Results, nil
		case EventCancelled:
			return nil, ErrCancelled
		case EventIdle:
			return nil, ErrNoSession
		}

		select {
		case <-ctx.Done():
			p.Cancel()
		case <-ticker.C:
		}
	}
}
