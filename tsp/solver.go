// Package tsp - the uniform solver contract and the algorithm dispatcher.
//
// The three strategies form a closed set dispatched by Algorithm tag at
// configuration time. There is no registry: newSolver is the only place that
// knows how to build each one.
package tsp

import (
	"fmt"
	"math/rand"
)

// Solver is one running heuristic. Step performs one bounded unit of work
// (a 2-opt pass, a generation, or a SOM relaxation pass) and is a no-op
// once Done reports true. Best always returns a valid Route.
//
// Implementations are not safe for concurrent use; Session serializes access.
type Solver interface {
	Algorithm() Algorithm
	Step() error
	Phase() Phase
	Done() bool
	Capped() bool
	Iteration() int
	Best() *Route
}

// newSolver parses options for algo and builds the matching solver. All
// validation happens before any solver state is allocated.
//
// Errors: ErrInvalidInput (wrapping ErrUnsupportedAlgorithm for unknown algo).
func newSolver(algo Algorithm, m *CityMap, rng *rand.Rand, options Options) (Solver, error) {
	switch algo {
	case AlgoTwoOpt:
		opts, err := parseTwoOptOptions(options)
		if err != nil {
			return nil, err
		}

		s, err := NewTwoOptSolver(m, nil, opts)
		if err != nil {
			return nil, err
		}

		return s, nil
	case AlgoGenetic:
		opts, err := parseGeneticOptions(options)
		if err != nil {
			return nil, err
		}

		s, err := NewGeneticSolver(m, rng, opts)
		if err != nil {
			return nil, err
		}

		return s, nil
	case AlgoSOM:
		opts, err := parseSOMOptions(options)
		if err != nil {
			return nil, err
		}

		s, err := NewSOMSolver(m, rng, opts)
		if err != nil {
			return nil, err
		}

		return s, nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrUnsupportedAlgorithm, string(algo))
	}
}
