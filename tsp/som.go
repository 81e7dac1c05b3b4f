// Package tsp - self-organizing map (elastic ring) solver.
//
// SOMSolver relaxes a cyclic ring of M neurons toward the cities. Cities are
// first normalized into the unit box (offset removed, both axes divided by
// the larger extent) so the learning rate means the same thing for every map.
//
// One Step is one pass over all cities in a seeded random order:
//
//	w       = nearest neuron to city c
//	for every neuron k with ring distance d(k,w) ≤ max(radius, 1):
//	    g   = exp(−d² / (2·max(radius,1)²))
//	    k  += lr · g · (c − k)
//
// After the pass lr ← lr·LearningDecay and radius ← radius·RadiusDecay.
//
// From the second pass on, every single move is clamped to LearningDecay
// times the largest move of the previous pass, so Displacement never grows
// from one pass to the next.
//
// Convergence (PhaseConverged): the largest single neuron move of a pass
// falls below ConvergenceThreshold, lr drops below MinLearningRate, radius
// drops below MinRadius, or MaxIterations passes have run (Capped). A
// diverging ring therefore still stops at the cap.
//
// The tour is derived on demand: each city maps to its nearest neuron and
// cities are sequenced by (neuron index, city index). The shortest derived
// tour seen so far is kept as the best route.
//
// Complexity per pass: O(n·M) winner search + O(n·radius) updates, plus
// O(n·M + n log n) for the derived tour.
package tsp

import (
	"math"
	"math/rand"
	"sort"
)

// SOMOptions configures SOMSolver.
//
// RingSize             – neurons on the ring; 0 selects 8·n.
// InitialLearningRate  – lr of the first pass, in (0,1].
// LearningDecay        – per-pass lr factor, in (0,1).
// InitialRadius        – neighbourhood radius in ring steps; 0 selects RingSize/10.
// RadiusDecay          – per-pass radius factor, in (0,1).
// MaxIterations        – pass cap (> 0).
// ConvergenceThreshold – stop once the largest move of a pass is below it (≥ 0).
// MinLearningRate      – stop once lr is below it (≥ 0).
// MinRadius            – stop once radius is below it (≥ 0); 0 disables.
type SOMOptions struct {
	RingSize             int
	InitialLearningRate  float64
	LearningDecay        float64
	InitialRadius        float64
	RadiusDecay          float64
	MaxIterations        int
	ConvergenceThreshold float64
	MinLearningRate      float64
	MinRadius            float64
}

// DefaultSOMOptions returns a ring of 8·n neurons with moderate decay.
func DefaultSOMOptions() SOMOptions {
	return SOMOptions{
		RingSize:             0,
		InitialLearningRate:  0.8,
		LearningDecay:        0.99,
		InitialRadius:        0,
		RadiusDecay:          0.97,
		MaxIterations:        2000,
		ConvergenceThreshold: 1e-4,
		MinLearningRate:      0.001,
		MinRadius:            0,
	}
}

// Validate checks option ranges.
// Errors: ErrInvalidInput.
func (o SOMOptions) Validate() error {
	if o.RingSize < 0 || (o.RingSize > 0 && o.RingSize < minCities) {
		return invalidf("ring_size must be 0 or at least %d, got %d", minCities, o.RingSize)
	}
	if !(o.InitialLearningRate > 0 && o.InitialLearningRate <= 1) {
		return invalidf("initial_learning_rate must be in (0,1], got %v", o.InitialLearningRate)
	}
	if !(o.LearningDecay > 0 && o.LearningDecay < 1) {
		return invalidf("learning_decay must be in (0,1), got %v", o.LearningDecay)
	}
	if o.InitialRadius < 0 || !finite(o.InitialRadius) {
		return invalidf("initial_radius must be finite and non-negative, got %v", o.InitialRadius)
	}
	if !(o.RadiusDecay > 0 && o.RadiusDecay < 1) {
		return invalidf("radius_decay must be in (0,1), got %v", o.RadiusDecay)
	}
	if o.MaxIterations <= 0 {
		return invalidf("max_iterations must be positive, got %d", o.MaxIterations)
	}
	if o.ConvergenceThreshold < 0 || !finite(o.ConvergenceThreshold) {
		return invalidf("convergence_threshold must be finite and non-negative, got %v", o.ConvergenceThreshold)
	}
	if o.MinLearningRate < 0 || !finite(o.MinLearningRate) {
		return invalidf("min_learning_rate must be finite and non-negative, got %v", o.MinLearningRate)
	}
	if o.MinRadius < 0 || !finite(o.MinRadius) {
		return invalidf("min_radius must be finite and non-negative, got %v", o.MinRadius)
	}

	return nil
}

// initialRingRadius is the radius, in normalized units, of the starting circle.
const initialRingRadius = 0.1

// SOMSolver is the self-organizing map strategy. Not safe for concurrent use.
type SOMSolver struct {
	m    *CityMap
	rng  *rand.Rand
	opts SOMOptions

	cities  []Point // normalized
	neurons []Point
	lr      float64
	radius  float64

	best         *Route
	passes       int
	displacement float64 // largest single move of the last pass
	moveCap      float64 // bound on any single move of the next pass
	phase        Phase
	capped       bool

	// scratch
	visit   []int
	winners []int
}

var _ Solver = (*SOMSolver)(nil)

// NewSOMSolver normalizes the cities and lays the ring on a small circle
// around their centroid. Defaults for RingSize and InitialRadius are
// resolved against the map here.
//
// Errors: ErrInvalidInput (nil map, nil rng, bad options).
func NewSOMSolver(m *CityMap, rng *rand.Rand, opts SOMOptions) (*SOMSolver, error) {
	if m == nil {
		return nil, invalidf("nil city map")
	}
	if rng == nil {
		return nil, invalidf("nil random source")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.RingSize == 0 {
		opts.RingSize = 8 * m.n
	}
	if opts.InitialRadius == 0 {
		opts.InitialRadius = float64(opts.RingSize) / 10
	}

	s := &SOMSolver{
		m:       m,
		rng:     rng,
		opts:    opts,
		cities:  normalizeCities(m),
		neurons: make([]Point, opts.RingSize),
		lr:      opts.InitialLearningRate,
		radius:  opts.InitialRadius,
		visit:   make([]int, m.n),
		winners: make([]int, m.n),
		moveCap: math.Inf(1),
		phase:   PhaseIdle,
	}

	var (
		c Point
		i int
	)
	for i = range s.cities {
		c.X += s.cities[i].X
		c.Y += s.cities[i].Y
	}
	c.X /= float64(m.n)
	c.Y /= float64(m.n)
	for i = range s.neurons {
		theta := 2 * math.Pi * float64(i) / float64(opts.RingSize)
		s.neurons[i] = Point{
			X: c.X + initialRingRadius*math.Cos(theta),
			Y: c.Y + initialRingRadius*math.Sin(theta),
		}
	}
	for i = range s.visit {
		s.visit[i] = i
	}
	s.best = s.derive()

	return s, nil
}

// normalizeCities maps cities into [0,1]² keeping the aspect ratio.
func normalizeCities(m *CityMap) []Point {
	lo, hi := m.Bounds()
	scale := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if scale == 0 {
		scale = 1
	}
	out := make([]Point, m.n)
	var i int
	for i = range out {
		out[i] = Point{
			X: (m.cities[i].X - lo.X) / scale,
			Y: (m.cities[i].Y - lo.Y) / scale,
		}
	}

	return out
}

// Algorithm implements Solver.
func (s *SOMSolver) Algorithm() Algorithm { return AlgoSOM }

// Phase implements Solver.
func (s *SOMSolver) Phase() Phase { return s.phase }

// Done implements Solver.
func (s *SOMSolver) Done() bool { return s.phase.Done() }

// Capped implements Solver.
func (s *SOMSolver) Capped() bool { return s.capped }

// Iteration implements Solver; it counts completed passes.
func (s *SOMSolver) Iteration() int { return s.passes }

// Best implements Solver: the shortest derived tour seen so far.
func (s *SOMSolver) Best() *Route { return s.best.Clone() }

// Current returns the tour derived from the ring as it is now.
func (s *SOMSolver) Current() *Route { return s.derive() }

// Displacement returns the largest single neuron move of the last pass.
func (s *SOMSolver) Displacement() float64 { return s.displacement }

// LearningRate returns the rate the next pass will use.
func (s *SOMSolver) LearningRate() float64 { return s.lr }

// Radius returns the neighbourhood radius the next pass will use.
func (s *SOMSolver) Radius() float64 { return s.radius }

// Neurons returns a copy of the ring in normalized coordinates.
func (s *SOMSolver) Neurons() []Point { return append([]Point(nil), s.neurons...) }

// Step runs one relaxation pass. It is a no-op once converged.
func (s *SOMSolver) Step() error {
	if s.phase.Done() {
		return nil
	}
	s.phase = PhaseRelaxing

	var (
		ringSize = len(s.neurons)
		r        = math.Max(s.radius, 1)
		reach    = int(r)
		twoR2    = 2 * r * r
		maxMove  float64

		c          Point
		w, k, off  int
		g, dx, dy  float64
		move, step float64
	)
	// A radius wider than half the ring would visit neurons twice.
	if reach > ringSize/2 {
		reach = ringSize / 2
	}

	shuffleIntsInPlace(s.visit, s.rng)
	for _, city := range s.visit {
		c = s.cities[city]
		w = s.nearest(c)
		for off = -reach; off <= reach; off++ {
			if ringSize%2 == 0 && off == reach && reach == ringSize/2 {
				break // opposite neuron already reached through -reach
			}
			k = ((w+off)%ringSize + ringSize) % ringSize
			g = math.Exp(-float64(off*off) / twoR2)
			step = s.lr * g
			dx = step * (c.X - s.neurons[k].X)
			dy = step * (c.Y - s.neurons[k].Y)
			if move = math.Hypot(dx, dy); move > s.moveCap {
				dx *= s.moveCap / move
				dy *= s.moveCap / move
				move = s.moveCap
			}
			s.neurons[k].X += dx
			s.neurons[k].Y += dy
			if move > maxMove {
				maxMove = move
			}
		}
	}

	s.passes++
	s.displacement = maxMove
	s.moveCap = maxMove * s.opts.LearningDecay
	s.lr *= s.opts.LearningDecay
	s.radius *= s.opts.RadiusDecay

	if cur := s.derive(); cur.length < s.best.length-lengthEps {
		s.best = cur
	}

	switch {
	case maxMove < s.opts.ConvergenceThreshold,
		s.lr < s.opts.MinLearningRate,
		s.radius < s.opts.MinRadius:
		s.phase = PhaseConverged
	case s.passes >= s.opts.MaxIterations:
		s.phase = PhaseConverged
		s.capped = true
	}

	return nil
}

// nearest returns the index of the neuron closest to p (lowest index on ties).
//
// Complexity: O(M).
func (s *SOMSolver) nearest(p Point) int {
	var (
		best  = 0
		bestD = math.Inf(1)
		d     float64
		i     int
	)
	for i = range s.neurons {
		dx := s.neurons[i].X - p.X
		dy := s.neurons[i].Y - p.Y
		d = dx*dx + dy*dy
		if d < bestD {
			best, bestD = i, d
		}
	}

	return best
}

// derive builds the tour implied by the current ring.
func (s *SOMSolver) derive() *Route {
	order := make([]int, s.m.n)
	var i int
	for i = range s.cities {
		s.winners[i] = s.nearest(s.cities[i])
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.winners[order[a]] < s.winners[order[b]]
	})
	r := &Route{m: s.m, order: order}
	r.Recompute()

	return r
}
