// Package tsp_test holds the shared fixtures of the tsp tests: small
// hand-checkable maps, seeded random maps and permutation assertions.
package tsp_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tspkit/tsp"
)

// -----------------------------------------------------------------------------
// Constants - single source of truth for test knobs
// -----------------------------------------------------------------------------

const (
	// epsLen is the tolerance for comparing route lengths.
	epsLen = 1e-9

	// seedDet is the seed used where a test only needs "some fixed seed".
	seedDet = int64(7)
)

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

// unitSquare is listed so that the identity order crosses itself:
// 0→1 and 2→3 are diagonals. The optimal tour has length 4.
func unitSquare() []tsp.Point {
	return []tsp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
}

// fiveCity is the square with its centre. The identity order walks three
// sides and enters the centre from the fourth corner, which is optimal:
// 30 + 10·√2.
func fiveCity() []tsp.Point {
	return []tsp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 5, Y: 5}}
}

var fiveCityOptimum = 30 + 10*math.Sqrt2

// circle returns n points on the unit circle in polygon order.
func circle(n int) []tsp.Point {
	pts := make([]tsp.Point, n)
	var i int
	for i = range pts {
		th := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = tsp.Point{X: math.Cos(th), Y: math.Sin(th)}
	}

	return pts
}

// polygonPerimeter is the length of the tour 0, 1, …, n-1 over circle(n).
func polygonPerimeter(n int) float64 {
	return float64(n) * 2 * math.Sin(math.Pi/float64(n))
}

// randomPoints returns n seeded points in [0,100)².
func randomPoints(n int, seed int64) []tsp.Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]tsp.Point, n)
	var i int
	for i = range pts {
		pts[i] = tsp.Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}

	return pts
}

func mustMap(t *testing.T, pts []tsp.Point) *tsp.CityMap {
	t.Helper()
	m, err := tsp.NewCityMap(pts)
	require.NoError(t, err)

	return m
}

// requirePermutation fails unless order is a permutation of 0..n-1.
func requirePermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.Len(t, order, n)
	seen := make([]bool, n)
	for pos, c := range order {
		require.Truef(t, c >= 0 && c < n, "city %d out of range at position %d", c, pos)
		require.Falsef(t, seen[c], "city %d repeated at position %d", c, pos)
		seen[c] = true
	}
}

// requireConsistent checks the permutation invariant and that the cached
// length agrees with a full recomputation.
func requireConsistent(t *testing.T, r *tsp.Route) {
	t.Helper()
	requirePermutation(t, r.Order(), r.Len())
	require.InDelta(t, r.Clone().Recompute(), r.Length(), 1e-7)
}
