package tsp_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/exp/slog"

	"github.com/katalvlaran/tspkit/tsp"
)

// countingObserver records what a Session reports to its Observer.
type countingObserver struct {
	mu       sync.Mutex
	steps    int
	finished []tsp.Snapshot
}

func (o *countingObserver) OnStep(tsp.Snapshot, time.Duration) {
	o.mu.Lock()
	o.steps++
	o.mu.Unlock()
}

func (o *countingObserver) OnFinish(snap tsp.Snapshot) {
	o.mu.Lock()
	o.finished = append(o.finished, snap)
	o.mu.Unlock()
}

// SessionSuite exercises the Session lifecycle for every algorithm.
type SessionSuite struct {
	suite.Suite
	ctx  context.Context
	logs *bytes.Buffer
	log  *slog.Logger
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.logs = &bytes.Buffer{}
	s.log = slog.New(slog.NewTextHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (s *SessionSuite) session(pts []tsp.Point, opts ...tsp.SessionOption) *tsp.Session {
	m, err := tsp.NewCityMap(pts)
	s.Require().NoError(err)

	return tsp.NewSession(m, append([]tsp.SessionOption{tsp.WithLogger(s.log)}, opts...)...)
}

// TestNotConfigured verifies every entry point refuses to work before Configure.
func (s *SessionSuite) TestNotConfigured() {
	sess := s.session(unitSquare())

	_, err := sess.Step()
	s.Require().ErrorIs(err, tsp.ErrNotConfigured)
	_, err = sess.Run(s.ctx, 0, nil)
	s.Require().ErrorIs(err, tsp.ErrNotConfigured)
	_, err = sess.CurrentResult()
	s.Require().ErrorIs(err, tsp.ErrNotConfigured)
	s.Equal(tsp.PhaseIdle, sess.Phase())
}

// TestRunTwoOptFiveCity checks the end-to-end scenario and the report stream.
func (s *SessionSuite) TestRunTwoOptFiveCity() {
	obs := &countingObserver{}
	sess := s.session(fiveCity(), tsp.WithObserver(obs))
	s.Require().NoError(sess.Configure(tsp.AlgoTwoOpt, tsp.Options{"strategy": "best"}))

	var reports []tsp.Snapshot
	final, err := sess.Run(s.ctx, 0, func(snap tsp.Snapshot) { reports = append(reports, snap) })
	s.Require().NoError(err)

	s.Equal(tsp.StatusComplete, final.Status)
	s.True(final.Final)
	s.InDelta(fiveCityOptimum, final.BestLength, epsLen)
	s.Equal(sess.ID(), final.SessionID)
	s.Equal(tsp.AlgoTwoOpt, final.Algorithm)

	s.Require().NotEmpty(reports)
	s.Equal(final, reports[len(reports)-1])
	var finals int
	for _, r := range reports {
		if r.Final {
			finals++
		}
	}
	s.Equal(1, finals, "exactly one final snapshot")

	s.Equal(1, obs.steps)
	s.Require().Len(obs.finished, 1)
	s.Equal(final, obs.finished[0])

	s.Contains(s.logs.String(), "session configured")
	s.Contains(s.logs.String(), "run finished")
}

// TestFewerThanThreeCities covers the minimum-size rule for every algorithm.
func (s *SessionSuite) TestFewerThanThreeCities() {
	for _, algo := range []tsp.Algorithm{tsp.AlgoTwoOpt, tsp.AlgoGenetic, tsp.AlgoSOM} {
		_, err := tsp.Solve(s.ctx, []tsp.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, algo, nil, 1)
		s.Require().ErrorIs(err, tsp.ErrInvalidInput, "algorithm %s", algo)
	}
}

// TestRunEveryAlgorithm runs each solver to completion on a small map.
func (s *SessionSuite) TestRunEveryAlgorithm() {
	pts := randomPoints(12, 21)
	cases := map[tsp.Algorithm]tsp.Options{
		tsp.AlgoTwoOpt:  nil,
		tsp.AlgoGenetic: {"population_size": 20, "elite_count": 2, "max_generations": 30},
		tsp.AlgoSOM:     {"max_iterations": 300},
	}
	for algo, options := range cases {
		sess := s.session(pts, tsp.WithSeed(5))
		s.Require().NoError(sess.Configure(algo, options))

		final, err := sess.Run(s.ctx, 0, nil)
		s.Require().NoError(err)
		s.True(final.Final, "algorithm %s", algo)
		s.Contains([]tsp.Status{tsp.StatusComplete, tsp.StatusCapped}, final.Status)
		requirePermutation(s.T(), final.Route, len(pts))
		s.True(sess.Phase().Done())
	}
}

// TestStepCap stops a run after maxSteps even when the solver could go on.
func (s *SessionSuite) TestStepCap() {
	sess := s.session(randomPoints(15, 2))
	s.Require().NoError(sess.Configure(tsp.AlgoGenetic, tsp.Options{"max_generations": 1000}))

	final, err := sess.Run(s.ctx, 3, nil)
	s.Require().NoError(err)
	s.Equal(tsp.StatusCapped, final.Status)
	s.Equal(3, final.Iteration)
}

// TestCancelFromReporter stops within one step of Cancel.
func (s *SessionSuite) TestCancelFromReporter() {
	sess := s.session(randomPoints(20, 3))
	s.Require().NoError(sess.Configure(tsp.AlgoGenetic, tsp.Options{"max_generations": 100000}))

	final, err := sess.Run(s.ctx, 0, func(snap tsp.Snapshot) {
		if !snap.Final {
			sess.Cancel()
		}
	})
	s.Require().NoError(err)
	s.Equal(tsp.StatusCancelled, final.Status)
	s.Equal(1, final.Iteration)

	cur, err := sess.CurrentResult()
	s.Require().NoError(err)
	s.Equal(final, cur)
	requirePermutation(s.T(), cur.Route, 20)

	// Cancel is sticky until the next Configure.
	snap, err := sess.Step()
	s.Require().NoError(err)
	s.Equal(tsp.StatusCancelled, snap.Status)
	s.Equal(1, snap.Iteration)

	s.Require().NoError(sess.Configure(tsp.AlgoGenetic, nil))
	snap, err = sess.Step()
	s.Require().NoError(err)
	s.Equal(tsp.StatusRunning, snap.Status)
	s.Equal(1, snap.Iteration)
}

// TestCancelFromAnotherGoroutine cancels a long run and reads results concurrently.
func (s *SessionSuite) TestCancelFromAnotherGoroutine() {
	sess := s.session(randomPoints(40, 4))
	s.Require().NoError(sess.Configure(tsp.AlgoGenetic, tsp.Options{"max_generations": 1000000}))

	started := make(chan struct{})
	var once sync.Once
	done := make(chan tsp.Snapshot, 1)
	go func() {
		final, _ := sess.Run(s.ctx, 0, func(tsp.Snapshot) { once.Do(func() { close(started) }) })
		done <- final
	}()

	<-started
	cur, err := sess.CurrentResult()
	s.Require().NoError(err)
	requirePermutation(s.T(), cur.Route, 40)
	sess.Cancel()

	select {
	case final := <-done:
		s.Equal(tsp.StatusCancelled, final.Status)
		s.True(final.Final)
		requirePermutation(s.T(), final.Route, 40)
	case <-time.After(10 * time.Second):
		s.FailNow("run did not stop after Cancel")
	}
}

// TestContextCancellation treats a done context like Cancel.
func (s *SessionSuite) TestContextCancellation() {
	sess := s.session(randomPoints(10, 5))
	s.Require().NoError(sess.Configure(tsp.AlgoSOM, nil))

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	final, err := sess.Run(ctx, 0, nil)
	s.Require().NoError(err)
	s.Equal(tsp.StatusCancelled, final.Status)
	s.Equal(0, final.Iteration)
	requirePermutation(s.T(), final.Route, 10)
}

// TestSeededSolveIsReproducible compares two one-shot runs with equal seeds.
func (s *SessionSuite) TestSeededSolveIsReproducible() {
	pts := randomPoints(18, 6)
	options := tsp.Options{"population_size": 24, "elite_count": 3, "max_generations": 40}

	a, err := tsp.Solve(s.ctx, pts, tsp.AlgoGenetic, options, 99, tsp.WithLogger(s.log))
	s.Require().NoError(err)
	b, err := tsp.Solve(s.ctx, pts, tsp.AlgoGenetic, options, 99, tsp.WithLogger(s.log))
	s.Require().NoError(err)

	s.Equal(a.Route, b.Route)
	s.Equal(a.BestLength, b.BestLength)
	s.NotEqual(a.SessionID, b.SessionID)
	_, err = uuid.Parse(a.SessionID)
	s.NoError(err)
}

// TestSolveTakesSessionOptions routes one-shot logs and observations to the caller.
func (s *SessionSuite) TestSolveTakesSessionOptions() {
	obs := &countingObserver{}
	snap, err := tsp.Solve(s.ctx, unitSquare(), tsp.AlgoTwoOpt, nil, 5, tsp.WithLogger(s.log), tsp.WithObserver(obs))
	s.Require().NoError(err)
	s.Equal(tsp.StatusComplete, snap.Status)

	s.Contains(s.logs.String(), "run finished")
	s.Contains(s.logs.String(), "seed=5")
	s.Equal(2, obs.steps)
	s.Require().Len(obs.finished, 1)
	s.Equal(snap, obs.finished[0])
}

// TestCurrentResultIsACopy guards the published snapshot from callers.
func (s *SessionSuite) TestCurrentResultIsACopy() {
	sess := s.session(unitSquare())
	s.Require().NoError(sess.Configure(tsp.AlgoTwoOpt, nil))

	cur, err := sess.CurrentResult()
	s.Require().NoError(err)
	s.Equal(tsp.StatusRunning, cur.Status)
	s.Equal(0, cur.Iteration)
	cur.Route[0] = 3

	again, err := sess.CurrentResult()
	s.Require().NoError(err)
	s.Equal([]int{0, 1, 2, 3}, again.Route)
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func TestSolve_OneShot(t *testing.T) {
	snap, err := tsp.Solve(context.Background(), unitSquare(), tsp.AlgoTwoOpt, nil, 0)
	require.NoError(t, err)
	require.Equal(t, 4.0, snap.BestLength)
	require.Equal(t, tsp.StatusComplete, snap.Status)
}
