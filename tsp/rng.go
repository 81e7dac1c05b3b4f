// Package tsp - RNG utilities shared by the stochastic solvers.
//
// Every session owns exactly one *rand.Rand built here; the genetic and SOM
// solvers draw all their randomness (initial population, selection, cut
// points, mutation, visiting order) from it.
//
// Goals:
//   - Determinism: same seed and options ⇒ identical runs.
//   - Encapsulation: a single RNG factory; no time-based sources anywhere.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. A session's RNG is only touched
//     from the goroutine that steps the session.
package tsp

import "math/rand"

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
//
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// shuffleIntsInPlace performs an in-place Fisher–Yates shuffle of a using rng.
// If rng==nil, a deterministic default stream is used (seed==0 policy).
//
// Complexity: O(n) time, O(1) extra space.
func shuffleIntsInPlace(a []int, rng *rand.Rand) {
	var n = len(a)
	if n <= 1 {
		return
	}
	if rng == nil {
		rng = rngFromSeed(0)
	}

	var i, j int
	for i = n - 1; i > 0; i-- {
		j = rng.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// permRange returns a permutation of 0..n-1 generated deterministically from rng.
// For n<0, returns ErrIndexOutOfRange.
//
// Complexity: O(n) time, O(n) space.
func permRange(n int, rng *rand.Rand) ([]int, error) {
	if n < 0 {
		return nil, ErrIndexOutOfRange
	}
	p := make([]int, n)

	var i int
	for i = 0; i < n; i++ {
		p[i] = i
	}
	shuffleIntsInPlace(p, rng)

	return p, nil
}

// randomSegment returns two distinct positions i < j in [0, n), n ≥ 2.
//
// Complexity: O(1).
func randomSegment(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	if i > j {
		i, j = j, i
	}

	return i, j
}
