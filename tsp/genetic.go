// Package tsp - genetic algorithm solver.
//
// GeneticSolver evolves a fixed-size population of Routes. One Step is one
// generation:
//  1. Rank by fitness 1/length (stable: ties keep population order).
//  2. Copy the top EliteCount individuals unchanged.
//  3. Fill the rest with children: select two parents (tournament or
//     roulette), order-crossover them both ways, mutate each child with
//     probability MutationRate (segment reversal or two-city exchange).
//  4. Update the running best and the stagnation counter.
//
// Elitism with EliteCount ≥ 1 keeps the best-of-generation length
// monotonically non-increasing. Order crossover always yields a permutation,
// so children never need repair.
//
// Termination (PhaseTerminated): MaxGenerations reached (Capped) or
// StagnationLimit consecutive generations without improvement.
//
// Complexity per generation: O(P log P) ranking + O(P·n) breeding.
package tsp

import (
	"math"
	"math/rand"
	"sort"
)

// SelectionMethod chooses how parents are drawn.
type SelectionMethod uint8

const (
	// TournamentSelection picks the fittest of TournamentSize uniform draws.
	TournamentSelection SelectionMethod = iota
	// RouletteSelection picks with probability proportional to fitness.
	RouletteSelection
)

func (s SelectionMethod) String() string {
	if s == RouletteSelection {
		return "roulette"
	}

	return "tournament"
}

// GeneticOptions configures GeneticSolver.
//
// PopulationSize  – individuals per generation (≥ 2).
// EliteCount      – survivors copied unchanged (1 ≤ EliteCount < PopulationSize).
// MutationRate    – per-child mutation probability in [0,1].
// MaxGenerations  – generation cap (> 0).
// StagnationLimit – stop after this many generations without improvement (0 disables).
// Selection       – tournament or roulette.
// TournamentSize  – contestants per tournament (≥ 1; tournament only).
type GeneticOptions struct {
	PopulationSize  int
	EliteCount      int
	MutationRate    float64
	MaxGenerations  int
	StagnationLimit int
	Selection       SelectionMethod
	TournamentSize  int
}

// DefaultGeneticOptions mirrors a small, fast configuration.
func DefaultGeneticOptions() GeneticOptions {
	return GeneticOptions{
		PopulationSize:  100,
		EliteCount:      20,
		MutationRate:    0.01,
		MaxGenerations:  500,
		StagnationLimit: 0,
		Selection:       TournamentSelection,
		TournamentSize:  3,
	}
}

// Validate checks option ranges.
// Errors: ErrInvalidInput.
func (o GeneticOptions) Validate() error {
	if o.PopulationSize < 2 {
		return invalidf("population_size must be at least 2, got %d", o.PopulationSize)
	}
	if o.EliteCount < 1 || o.EliteCount >= o.PopulationSize {
		return invalidf("elite_count must be in [1, population_size), got %d", o.EliteCount)
	}
	if !(o.MutationRate >= 0 && o.MutationRate <= 1) {
		return invalidf("mutation_rate must be in [0,1], got %v", o.MutationRate)
	}
	if o.MaxGenerations <= 0 {
		return invalidf("max_generations must be positive, got %d", o.MaxGenerations)
	}
	if o.StagnationLimit < 0 {
		return invalidf("stagnation_limit must be non-negative, got %d", o.StagnationLimit)
	}
	switch o.Selection {
	case TournamentSelection:
		if o.TournamentSize < 1 {
			return invalidf("tournament_size must be positive, got %d", o.TournamentSize)
		}
	case RouletteSelection:
	default:
		return invalidf("unknown selection method %d", o.Selection)
	}

	return nil
}

// GeneticSolver is the genetic strategy. Not safe for concurrent use.
type GeneticSolver struct {
	m    *CityMap
	rng  *rand.Rand
	opts GeneticOptions

	pop     []*Route
	fitness []float64 // parallel to pop
	ranked  []int     // pop indices, fittest first

	best       *Route
	generation int
	stagnant   int
	phase      Phase
	capped     bool

	// scratch for order crossover
	placed []bool
}

var _ Solver = (*GeneticSolver)(nil)

// NewGeneticSolver seeds a random initial population from rng.
//
// Errors: ErrInvalidInput (nil map, nil rng, bad options).
func NewGeneticSolver(m *CityMap, rng *rand.Rand, opts GeneticOptions) (*GeneticSolver, error) {
	if m == nil {
		return nil, invalidf("nil city map")
	}
	if rng == nil {
		return nil, invalidf("nil random source")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &GeneticSolver{
		m:       m,
		rng:     rng,
		opts:    opts,
		pop:     make([]*Route, opts.PopulationSize),
		fitness: make([]float64, opts.PopulationSize),
		ranked:  make([]int, opts.PopulationSize),
		placed:  make([]bool, m.n),
		phase:   PhaseIdle,
	}
	var i int
	for i = range s.pop {
		s.pop[i] = NewRandomRoute(m, rng)
	}
	s.rank()
	s.best = s.pop[s.ranked[0]].Clone()

	return s, nil
}

// Algorithm implements Solver.
func (s *GeneticSolver) Algorithm() Algorithm { return AlgoGenetic }

// Phase implements Solver.
func (s *GeneticSolver) Phase() Phase { return s.phase }

// Done implements Solver.
func (s *GeneticSolver) Done() bool { return s.phase.Done() }

// Capped implements Solver.
func (s *GeneticSolver) Capped() bool { return s.capped }

// Iteration implements Solver; it counts completed generations.
func (s *GeneticSolver) Iteration() int { return s.generation }

// Best implements Solver: the shortest route seen in any generation.
func (s *GeneticSolver) Best() *Route { return s.best.Clone() }

// GenerationBest returns the fittest member of the current population.
func (s *GeneticSolver) GenerationBest() *Route { return s.pop[s.ranked[0]].Clone() }

// Population returns copies of the current population in population order.
func (s *GeneticSolver) Population() []*Route {
	out := make([]*Route, len(s.pop))
	var i int
	for i = range s.pop {
		out[i] = s.pop[i].Clone()
	}

	return out
}

// Step evolves one generation. It is a no-op once terminated.
func (s *GeneticSolver) Step() error {
	if s.phase.Done() {
		return nil
	}
	s.phase = PhaseEvolving

	next := make([]*Route, 0, s.opts.PopulationSize)
	var i int
	for i = 0; i < s.opts.EliteCount; i++ {
		next = append(next, s.pop[s.ranked[i]].Clone())
	}

	var cumulative []float64
	if s.opts.Selection == RouletteSelection {
		cumulative = s.cumulativeFitness()
	}
	for len(next) < s.opts.PopulationSize {
		p1 := s.pop[s.selectParent(cumulative)]
		p2 := s.pop[s.selectParent(cumulative)]

		lo, hi := s.cutPoints()
		for _, child := range [2]*Route{s.crossover(p1, p2, lo, hi), s.crossover(p2, p1, lo, hi)} {
			if len(next) == s.opts.PopulationSize {
				break
			}
			if s.rng.Float64() < s.opts.MutationRate {
				if err := s.mutate(child); err != nil {
					return err
				}
			}
			next = append(next, child)
		}
	}

	s.pop = next
	s.rank()
	s.generation++

	if genBest := s.pop[s.ranked[0]]; genBest.length < s.best.length-lengthEps {
		s.best = genBest.Clone()
		s.stagnant = 0
	} else {
		s.stagnant++
	}

	switch {
	case s.generation >= s.opts.MaxGenerations:
		s.phase = PhaseTerminated
		s.capped = true
	case s.opts.StagnationLimit > 0 && s.stagnant >= s.opts.StagnationLimit:
		s.phase = PhaseTerminated
	}

	return nil
}

// rank refreshes fitness and the fittest-first index (stable by population index).
func (s *GeneticSolver) rank() {
	var i int
	for i = range s.pop {
		// Coincident cities can give a zero length; keep fitness finite.
		s.fitness[i] = 1 / math.Max(s.pop[i].length, lengthEps)
		s.ranked[i] = i
	}
	sort.SliceStable(s.ranked, func(a, b int) bool {
		return s.fitness[s.ranked[a]] > s.fitness[s.ranked[b]]
	})
}

// cumulativeFitness returns the roulette wheel over the current population.
func (s *GeneticSolver) cumulativeFitness() []float64 {
	cum := make([]float64, len(s.fitness))
	var (
		total float64
		i     int
	)
	for i = range s.fitness {
		total += s.fitness[i]
		cum[i] = total
	}

	return cum
}

// selectParent draws one population index using the configured method.
// Every individual has non-zero probability under both methods.
func (s *GeneticSolver) selectParent(cumulative []float64) int {
	if s.opts.Selection == RouletteSelection {
		spin := s.rng.Float64() * cumulative[len(cumulative)-1]
		idx := sort.SearchFloat64s(cumulative, spin)
		if idx >= len(cumulative) {
			idx = len(cumulative) - 1
		}

		return idx
	}

	var (
		n      = len(s.pop)
		winner = s.rng.Intn(n)
		k      int
	)
	for k = 1; k < s.opts.TournamentSize; k++ {
		c := s.rng.Intn(n)
		if s.fitness[c] > s.fitness[winner] || (s.fitness[c] == s.fitness[winner] && c < winner) {
			winner = c
		}
	}

	return winner
}

// cutPoints draws the inclusive crossover slice [lo, hi].
func (s *GeneticSolver) cutPoints() (int, int) {
	lo := s.rng.Intn(s.m.n)
	hi := s.rng.Intn(s.m.n)
	if lo > hi {
		lo, hi = hi, lo
	}

	return lo, hi
}

// crossover is order crossover: keep a[lo..hi] in place, fill the remaining
// positions left to right with b's cities in b's order, skipping placed ones.
//
// Complexity: O(n).
func (s *GeneticSolver) crossover(a, b *Route, lo, hi int) *Route {
	var (
		n     = s.m.n
		order = make([]int, n)
		i     int
	)
	for i = range s.placed {
		s.placed[i] = false
	}
	for i = lo; i <= hi; i++ {
		order[i] = a.order[i]
		s.placed[a.order[i]] = true
	}

	var pos, city int
	for _, city = range b.order {
		if s.placed[city] {
			continue
		}
		if pos == lo {
			pos = hi + 1
		}
		order[pos] = city
		pos++
	}

	child := &Route{m: s.m, order: order}
	child.Recompute()

	return child
}

// mutate applies a random segment reversal or two-city exchange.
func (s *GeneticSolver) mutate(r *Route) error {
	i, j := randomSegment(s.m.n, s.rng)
	if s.rng.Intn(2) == 0 {
		return r.SwapSegment(i, j)
	}

	return r.Exchange(i, j)
}
