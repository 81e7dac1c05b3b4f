// Package progress provides snapshot sinks for tsp.Session.Run: a rate
// limited forwarder for logs or UIs, a history collector for charts and
// replays, and Tee to combine them.
package progress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/katalvlaran/tspkit/tsp"
)

// Throttle forwards at most a configured rate of intermediate snapshots to
// the next Reporter. Final snapshots are always forwarded.
type Throttle struct {
	next    tsp.Reporter
	limiter *rate.Limiter
	now     func() time.Time

	mu      sync.Mutex
	dropped int
}

// ThrottleOption customizes NewThrottle.
type ThrottleOption func(*Throttle)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ThrottleOption {
	return func(t *Throttle) { t.now = now }
}

// NewThrottle forwards up to perSecond intermediate snapshots per second,
// with bursts of up to burst, to next. perSecond ≤ 0 forwards only finals.
func NewThrottle(perSecond float64, burst int, next tsp.Reporter, opts ...ThrottleOption) *Throttle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit, burst = 0, 0
	}
	t := &Throttle{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Report is a tsp.Reporter.
func (t *Throttle) Report(snap tsp.Snapshot) {
	if !snap.Final && !t.limiter.AllowN(t.now(), 1) {
		t.mu.Lock()
		t.dropped++
		t.mu.Unlock()

		return
	}
	if t.next != nil {
		t.next(snap)
	}
}

// Dropped returns how many intermediate snapshots were not forwarded.
func (t *Throttle) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.dropped
}

// Tee returns a Reporter that forwards every snapshot to each non-nil
// reporter in order.
func Tee(reporters ...tsp.Reporter) tsp.Reporter {
	return func(snap tsp.Snapshot) {
		for _, r := range reporters {
			if r != nil {
				r(snap)
			}
		}
	}
}
