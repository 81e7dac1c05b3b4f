// Package tsp - Session, the orchestrator binding one CityMap to one solver.
//
// Lifecycle:
//
//	s := NewSession(m, WithSeed(42))
//	s.Configure(AlgoGenetic, Options{"population_size": 60})
//	snap, _ := s.Run(ctx, 0, report) // or repeated s.Step()
//	s.CurrentResult()                // any time after Configure
//
// Concurrency:
//   - Configure, Step and Run belong to one goroutine at a time.
//   - Cancel and CurrentResult are safe from any goroutine.
//   - Cancel is cooperative: it is observed before every unit of work, so a
//     running Run stops within one step. The flag stays set until the next
//     Configure.
package tsp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Observer receives per-step and per-run notifications from a Session.
type Observer interface {
	// OnStep is called after every completed unit of work.
	OnStep(snap Snapshot, elapsed time.Duration)
	// OnFinish is called once with the final snapshot of a Run.
	OnFinish(snap Snapshot)
}

type nopObserver struct{}

func (nopObserver) OnStep(Snapshot, time.Duration) {}
func (nopObserver) OnFinish(Snapshot)              {}

// SessionOption customizes NewSession.
type SessionOption func(*Session)

// WithSeed sets the seed of every RNG the session creates. Seed 0 selects
// the package default.
func WithSeed(seed int64) SessionOption {
	return func(s *Session) { s.seed = seed }
}

// WithLogger routes session logs to l. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver attaches o to the session. A nil observer is ignored.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// Session runs one solver at a time over a shared, read-only CityMap.
type Session struct {
	id       string
	m        *CityMap
	seed     int64
	logger   *slog.Logger
	observer Observer

	cancelled atomic.Bool

	// solver is owned by the stepping goroutine.
	solver Solver

	mu   sync.Mutex // guards last
	last Snapshot
}

// NewSession creates an unconfigured session with a fresh UUID.
func NewSession(m *CityMap, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		m:        m,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)

	return s
}

// ID returns the session id stamped on every snapshot.
func (s *Session) ID() string { return s.id }

// Seed returns the configured seed.
func (s *Session) Seed() int64 { return s.seed }

// Phase returns the active solver's phase, or PhaseIdle before Configure.
func (s *Session) Phase() Phase {
	if s.solver == nil {
		return PhaseIdle
	}

	return s.solver.Phase()
}

// Configure validates options and replaces the active solver with a fresh
// one for algo, seeded from the session seed. On error the session keeps
// its previous state.
//
// Errors: ErrInvalidInput (bad options, nil map), wrapping
// ErrUnsupportedAlgorithm for unknown algo.
func (s *Session) Configure(algo Algorithm, options Options) error {
	if s.m == nil {
		return invalidf("nil city map")
	}
	solver, err := newSolver(algo, s.m, rngFromSeed(s.seed), options)
	if err != nil {
		s.logger.Warn("configure rejected", "algorithm", string(algo), "err", err)

		return err
	}

	s.solver = solver
	s.cancelled.Store(false)
	s.publish(s.snapshot(StatusRunning, false))
	s.logger.Info("session configured",
		"algorithm", string(algo),
		"cities", s.m.Len(),
		"seed", s.seed,
	)

	return nil
}

// Step performs one unit of work and returns the resulting snapshot. Once
// the solver is done, or after Cancel, it returns a final snapshot without
// doing any work.
//
// Errors: ErrNotConfigured; solver errors indicate an internal bug.
func (s *Session) Step() (Snapshot, error) {
	if s.solver == nil {
		return Snapshot{}, ErrNotConfigured
	}
	if s.cancelled.Load() {
		snap := s.snapshot(StatusCancelled, true)
		s.publish(snap)

		return snap, nil
	}
	if s.solver.Done() {
		snap := s.snapshot(s.doneStatus(), true)
		s.publish(snap)

		return snap, nil
	}

	start := time.Now()
	if err := s.solver.Step(); err != nil {
		s.logger.Error("step failed", "algorithm", string(s.solver.Algorithm()), "err", err)

		return s.lastSnapshot(), err
	}
	elapsed := time.Since(start)

	var snap Snapshot
	if s.solver.Done() {
		snap = s.snapshot(s.doneStatus(), true)
	} else {
		snap = s.snapshot(StatusRunning, false)
	}
	s.publish(snap)
	s.observer.OnStep(snap, elapsed)
	s.logger.Debug("step",
		"algorithm", string(snap.Algorithm),
		"iteration", snap.Iteration,
		"best_length", snap.BestLength,
		"phase", s.solver.Phase().String(),
	)

	return snap, nil
}

// Run steps until the solver is done, maxSteps steps have run (maxSteps ≤ 0
// means no session cap), ctx is done, or Cancel is called. report, if
// non-nil, receives every intermediate snapshot and then exactly one final
// snapshot, which is also returned.
//
// Errors: ErrNotConfigured; solver errors indicate an internal bug.
// Cancellation is reported as StatusCancelled, never as an error.
func (s *Session) Run(ctx context.Context, maxSteps int, report Reporter) (Snapshot, error) {
	if s.solver == nil {
		return Snapshot{}, ErrNotConfigured
	}

	var steps int
	for {
		if ctx.Err() != nil {
			s.Cancel()
		}
		switch {
		case s.cancelled.Load():
			return s.finish(StatusCancelled, report), nil
		case s.solver.Done():
			return s.finish(s.doneStatus(), report), nil
		case maxSteps > 0 && steps >= maxSteps:
			return s.finish(StatusCapped, report), nil
		}

		snap, err := s.Step()
		if err != nil {
			return snap, err
		}
		steps++
		if report != nil && !snap.Final {
			report(snap)
		}
	}
}

// CurrentResult returns a copy of the latest snapshot.
//
// Errors: ErrNotConfigured.
func (s *Session) CurrentResult() (Snapshot, error) {
	snap := s.lastSnapshot()
	if snap.SessionID == "" {
		return Snapshot{}, ErrNotConfigured
	}

	return snap, nil
}

// lastSnapshot copies the published snapshot; it is zero before Configure.
func (s *Session) lastSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.last
	out.Route = append([]int(nil), s.last.Route...)

	return out
}

// Cancel asks the session to stop before its next unit of work.
func (s *Session) Cancel() { s.cancelled.Store(true) }

// finish publishes, reports and returns the final snapshot of a Run.
func (s *Session) finish(status Status, report Reporter) Snapshot {
	snap := s.snapshot(status, true)
	s.publish(snap)
	s.observer.OnFinish(snap)
	s.logger.Info("run finished",
		"algorithm", string(snap.Algorithm),
		"status", snap.Status.String(),
		"iteration", snap.Iteration,
		"best_length", snap.BestLength,
	)
	if report != nil {
		report(snap)
	}

	return snap
}

func (s *Session) doneStatus() Status {
	if s.solver.Capped() {
		return StatusCapped
	}

	return StatusComplete
}

func (s *Session) snapshot(status Status, final bool) Snapshot {
	best := s.solver.Best()

	return Snapshot{
		SessionID:  s.id,
		Algorithm:  s.solver.Algorithm(),
		Iteration:  s.solver.Iteration(),
		BestLength: round1e9(best.Length()),
		Route:      best.order,
		Status:     status,
		Final:      final,
	}
}

func (s *Session) publish(snap Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.last.Route = append([]int(nil), snap.Route...)
	s.mu.Unlock()
}

// Solve is a one-shot convenience: build the map, configure a session with
// seed, run it to completion under ctx and return the final snapshot. opts
// are applied after the seed, so WithLogger or WithObserver can be passed.
//
// Errors: ErrInvalidInput for bad points, algorithm or options.
func Solve(ctx context.Context, points []Point, algo Algorithm, options Options, seed int64, opts ...SessionOption) (Snapshot, error) {
	m, err := NewCityMap(points)
	if err != nil {
		return Snapshot{}, err
	}
	s := NewSession(m, append([]SessionOption{WithSeed(seed)}, opts...)...)
	if err = s.Configure(algo, options); err != nil {
		return Snapshot{}, err
	}

	return s.Run(ctx, 0, nil)
}
