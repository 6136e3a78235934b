package viaggiatreno

import (
	"context"
	"sync"
	"time"
)

// Gate is the backoff window shared by every caller in the process. One
// caller's rate-limit observation extends the window for all of them,
// collapsing a thundering herd into a single cool-down.
//
// Invariant: while a window is active, the resume-at instant only grows or
// holds. Concurrent extensions that would move it earlier are discarded.
type Gate struct {
	mu    sync.Mutex
	until time.Time
	clock clock
}

// NewGate returns a gate with no active window.
func NewGate() *Gate {
	return &Gate{clock: systemClock{}}
}

func newGateWithClock(c clock) *Gate {
	return &Gate{clock: c}
}

// Wait blocks until the shared window has passed, re-reading the resume-at
// instant after each sleep so an extension by a concurrent caller is
// honored rather than fired into.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		d := g.until.Sub(g.clock.Now())
		g.mu.Unlock()

		if d <= 0 {
			return nil
		}
		if err := g.clock.Sleep(ctx, d); err != nil {
			return err
		}
	}
}

// Extend proposes a new window ending at now+d and reports whether it
// widened the gate. The candidate is computed outside the lock; the
// critical section is only the compare-and-store, so it never serializes
// network I/O.
func (g *Gate) Extend(d time.Duration) bool {
	candidate := g.clock.Now().Add(d)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !candidate.After(g.until) {
		return false
	}
	g.until = candidate
	return true
}

// Resume returns the current resume-at instant (zero when no window was
// ever opened).
func (g *Gate) Resume() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.until
}
