package session

import (
	"sync/atomic"
	"time"

	"pixsort/internal/scheduler"

	"github.com/google/uuid"
)

// LoadSession is one in-flight folder load. It is created by Poller.Start
// and discarded when the load completes, is cancelled, or is superseded.
// Completed and the slots are only touched by Poller.Tick.
type LoadSession[H any] struct {
	ID        uuid.UUID
	Paths     []string
	Total     int
	Completed int
	Started   time.Time

	cancelled atomic.Bool
	slots     []H
	filled    []bool
	handle    *scheduler.Handle
}

func newLoadSession[H any](paths []string) *LoadSession[H] {
	return &LoadSession[H]{
		ID:      uuid.New(),
		Paths:   paths,
		Total:   len(paths),
		Started: time.Now(),
		slots:   make([]H, len(paths)),
		filled:  make([]bool, len(paths)),
	}
}

// Cancel flags the session; the next tick tears it down. Safe from any
// goroutine.
func (s *LoadSession[H]) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (s *LoadSession[H]) Cancelled() bool {
	return s.cancelled.Load()
}

// store files a converted result at its submission index.
func (s *LoadSession[H]) store(i int, h H) {
	if s.filled[i] {
		return
	}
	s.slots[i] = h
	s.filled[i] = true
	s.Completed++
}

// compact returns the filled slots in submission order.
func (s *LoadSession[H]) compact() []H {
	out := make([]H, 0, s.Total)
	for i, ok := range s.filled {
		if ok {
			out = append(out, s.slots[i])
		}
	}
	return out
}

// drop releases the slots so a torn-down session holds no images.
func (s *LoadSession[H]) drop() {
	s.slots = nil
	s.filled = nil
}
