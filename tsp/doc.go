// Package tsp provides heuristic Travelling Salesman Problem solvers over
// points in the plane.
//
// Three interchangeable strategies share one data model (CityMap + Route)
// and one lifecycle (Session: Configure → Step/Run → CurrentResult, Cancel):
//
//	two_opt  2-opt local search, first- or best-improvement passes.
//	         Per pass: O(n²) candidate checks, O(1) cost update per move.
//	genetic  population search with order crossover, swap/reversal
//	         mutation, tournament or roulette selection and elitism.
//	         Per generation: O(P·n) breeding, O(P log P) ranking.
//	som      self-organizing ring (elastic net) relaxed toward the cities.
//	         Per pass: O(n·M) winner search for a ring of M neurons.
//
// All stochastic steps draw from one seeded *rand.Rand per session, so runs
// are reproducible for a given seed and option set. Seed 0 maps to a fixed
// default seed; there is no time-based randomness anywhere in the package.
//
// Errors are sentinels from types.go (ErrInvalidInput, ErrInvalidPermutation,
// ErrIndexOutOfRange, ErrUnsupportedAlgorithm, ErrNotConfigured) and must be
// matched with errors.Is. Cancellation is never an error: it is a terminal
// Status of a run.
//
// Quick start:
//
//	snap, err := tsp.Solve(ctx, points, tsp.AlgoTwoOpt, tsp.Options{"strategy": "best"}, 42)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(snap.BestLength, snap.Route)
package tsp
