// Package tsp - 2-opt local search solver.
//
// TwoOptSolver improves one Route by pairwise edge exchange. For edges
// (a,b)=(o[i],o[i+1]) and (c,d)=(o[j],o[j+1]) with i<j:
//
//	Δ = w(a,c) + w(b,d) − w(a,b) − w(c,d)
//
// and a move is improving iff Δ < −Epsilon. Applying it reverses o[i+1..j].
//
// One Step is one pass:
//   - FirstImprovement: scan from the beginning, apply the first improving
//     pair; the next pass restarts the scan.
//   - BestImprovement: scan all pairs, apply the single best improving pair.
//
// A pass that finds no improving pair moves the solver to PhaseConverged, as
// does a move whose relative gain −Δ/length is not above ImprovementThreshold
// (the move is still applied) and reaching MaxPasses (Capped() then reports
// true).
//
// Complexity:
//   - One pass: O(n²) candidate checks, each O(1).
//   - One accepted move: O(n) reversal, O(1) length update.
package tsp

// TwoOptStrategy selects how a pass picks its move.
type TwoOptStrategy uint8

const (
	// FirstImprovement applies the first improving pair found in scan order.
	FirstImprovement TwoOptStrategy = iota
	// BestImprovement applies the most improving pair of the full scan.
	BestImprovement
)

func (s TwoOptStrategy) String() string {
	if s == BestImprovement {
		return "best"
	}

	return "first"
}

// DefaultTwoOptEps absorbs floating-point noise in Δ so equal-length
// reorderings never oscillate.
const DefaultTwoOptEps = lengthEps

// TwoOptOptions configures TwoOptSolver.
//
// Strategy             – first or best improvement per pass.
// MaxPasses            – hard cap on passes (must be > 0).
// Epsilon              – acceptance tolerance; improving iff Δ < −Epsilon (must be ≥ 0).
// ImprovementThreshold – stop after a move gaining at most this fraction of
// the tour length, in [0,1); 0 disables.
type TwoOptOptions struct {
	Strategy             TwoOptStrategy
	MaxPasses            int
	Epsilon              float64
	ImprovementThreshold float64
}

// DefaultTwoOptOptions returns first-improvement 2-opt with a generous pass cap.
func DefaultTwoOptOptions() TwoOptOptions {
	return TwoOptOptions{
		Strategy:             FirstImprovement,
		MaxPasses:            100000,
		Epsilon:              DefaultTwoOptEps,
		ImprovementThreshold: 0,
	}
}

// Validate checks option ranges.
// Errors: ErrInvalidInput.
func (o TwoOptOptions) Validate() error {
	if o.Strategy != FirstImprovement && o.Strategy != BestImprovement {
		return invalidf("unknown 2-opt strategy %d", o.Strategy)
	}
	if o.MaxPasses <= 0 {
		return invalidf("max_passes must be positive, got %d", o.MaxPasses)
	}
	if o.Epsilon < 0 || !finite(o.Epsilon) {
		return invalidf("epsilon must be finite and non-negative, got %v", o.Epsilon)
	}
	if !(o.ImprovementThreshold >= 0 && o.ImprovementThreshold < 1) {
		return invalidf("improvement_threshold must be in [0,1), got %v", o.ImprovementThreshold)
	}

	return nil
}

// TwoOptSolver is the 2-opt strategy. Not safe for concurrent use.
type TwoOptSolver struct {
	route  *Route
	opts   TwoOptOptions
	phase  Phase
	passes int
	capped bool
}

var _ Solver = (*TwoOptSolver)(nil)

// NewTwoOptSolver prepares a solver starting from init (cloned), or from the
// identity order when init is nil.
//
// Errors: ErrInvalidInput (nil map, bad options, init from another map),
// ErrInvalidPermutation (init violates the permutation invariant).
func NewTwoOptSolver(m *CityMap, init *Route, opts TwoOptOptions) (*TwoOptSolver, error) {
	if m == nil {
		return nil, invalidf("nil city map")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var route *Route
	if init == nil {
		route = NewIdentityRoute(m)
	} else {
		if init.m != m {
			return nil, invalidf("initial route belongs to a different city map")
		}
		if err := init.Validate(); err != nil {
			return nil, err
		}
		route = init.Clone()
	}

	return &TwoOptSolver{route: route, opts: opts, phase: PhaseIdle}, nil
}

// Algorithm implements Solver.
func (s *TwoOptSolver) Algorithm() Algorithm { return AlgoTwoOpt }

// Phase implements Solver.
func (s *TwoOptSolver) Phase() Phase { return s.phase }

// Done implements Solver.
func (s *TwoOptSolver) Done() bool { return s.phase.Done() }

// Capped implements Solver.
func (s *TwoOptSolver) Capped() bool { return s.capped }

// Iteration implements Solver; it counts completed passes.
func (s *TwoOptSolver) Iteration() int { return s.passes }

// Best implements Solver. The working route is the best route.
func (s *TwoOptSolver) Best() *Route { return s.route.Clone() }

// Step runs one pass. It is a no-op once the solver has converged.
func (s *TwoOptSolver) Step() error {
	if s.phase.Done() {
		return nil
	}
	s.phase = PhaseImproving

	i, j, found := s.scan()
	s.passes++
	if !found {
		s.phase = PhaseConverged

		return nil
	}
	before := s.route.Length()
	// Edges (o[i],o[i+1]) and (o[j],o[j+1]) ⇒ reverse positions i+1..j.
	if err := s.route.SwapSegment(i+1, j); err != nil {
		return err
	}
	switch {
	case s.opts.ImprovementThreshold > 0 && 1-s.route.Length()/before <= s.opts.ImprovementThreshold:
		s.phase = PhaseConverged
	case s.passes >= s.opts.MaxPasses:
		s.phase = PhaseConverged
		s.capped = true
	}

	return nil
}

// scan searches the 2-opt neighbourhood according to the strategy and
// returns the chosen edge pair (i, j).
//
// Pairs with j == i+1, and (0, n−1), share a city and are skipped.
func (s *TwoOptSolver) scan() (int, int, bool) {
	var (
		o    = s.route.order
		m    = s.route.m
		n    = len(o)
		eps  = s.opts.Epsilon
		best = -eps // a candidate must strictly beat this
		bi   = -1
		bj   = -1

		a, b, c, d int
		delta      float64
		i, j       int
	)
	for i = 0; i <= n-3; i++ {
		a = o[i]
		b = o[i+1]
		for j = i + 2; j <= n-1; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			c = o[j]
			d = o[(j+1)%n]

			delta = (m.at(a, c) + m.at(b, d)) - (m.at(a, b) + m.at(c, d))
			if delta >= best {
				continue
			}
			if s.opts.Strategy == FirstImprovement {
				return i, j, true
			}
			best, bi, bj = delta, i, j
		}
	}

	return bi, bj, bi >= 0
}
