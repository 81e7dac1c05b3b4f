// Package tsp - cost utilities shared by the solvers.
//
// Helpers here compute the closed-cycle length of a city order against a
// CityMap. They are side-effect free.
//
// Design:
//   - One unchecked path (cycleLength) for orders already known to be valid.
//   - One checked path (TourLength) for caller-provided orders.
//   - Reported lengths are rounded to 1e-9 to hide summation-order noise.
package tsp

import "math"

// roundScale controls reported length stabilization precision (1e-9).
const roundScale = 1e9

// lengthEps is the smallest length difference treated as an improvement.
const lengthEps = 1e-9

// TourLength returns the closed-cycle length of order over m, including the
// wrap edge from the last city back to the first.
//
// Errors: ErrInvalidInput for a nil map, ErrInvalidPermutation if order is
// not a permutation of 0..n-1.
//
// Complexity: O(n).
func TourLength(m *CityMap, order []int) (float64, error) {
	if m == nil {
		return 0, invalidf("nil city map")
	}
	if err := validatePermutation(order, m.n); err != nil {
		return 0, err
	}

	return round1e9(cycleLength(m, order)), nil
}

// cycleLength sums consecutive distances of a valid order, wrap edge included.
//
// Complexity: O(n).
func cycleLength(m *CityMap, order []int) float64 {
	var (
		n   = len(order)
		sum float64
		i   int
	)
	for i = 0; i < n-1; i++ {
		sum += m.at(order[i], order[i+1])
	}
	if n > 1 {
		sum += m.at(order[n-1], order[0])
	}

	return sum
}

// round1e9 returns x rounded to 1e-9 absolute precision.
//
// Complexity: O(1).
func round1e9(x float64) float64 {
	return math.Round(x*roundScale) / roundScale
}
