// Package tsp - Route, the common working and result type of all solvers.
//
// A Route is an open cyclic order of all n city indices (no closing
// duplicate, the wrap edge order[n-1]→order[0] is implicit) plus a cached
// total length. Provided operations:
//   - RouteFromOrder / NewIdentityRoute / NewRandomRoute: constructors.
//   - Length / Recompute: cached vs. from-scratch length.
//   - SwapSegment / ReversalDelta: the 2-opt primitive with O(1) cache update.
//   - Exchange: two-position swap (genetic mutation).
//   - Canonical: rotation + orientation normal form for comparisons.
//
// Invariant: order is always a permutation of 0..n-1, and every mutator leaves
// the cached length valid, so callers never observe a stale value.
package tsp

import (
	"fmt"
	"math/rand"
	"strings"
)

// Route is a cyclic permutation of a CityMap's cities with a cached length.
type Route struct {
	m      *CityMap
	order  []int
	length float64
}

// RouteFromOrder builds a Route from an explicit city order (copied).
//
// Errors: ErrInvalidInput for a nil map, ErrInvalidPermutation if order is
// not a permutation of 0..n-1.
//
// Complexity: O(n).
func RouteFromOrder(m *CityMap, order []int) (*Route, error) {
	if m == nil {
		return nil, invalidf("nil city map")
	}
	if err := validatePermutation(order, m.n); err != nil {
		return nil, err
	}
	r := &Route{m: m, order: append([]int(nil), order...)}
	r.Recompute()

	return r, nil
}

// NewIdentityRoute returns the route 0, 1, …, n-1.
func NewIdentityRoute(m *CityMap) *Route {
	order := make([]int, m.n)
	var i int
	for i = range order {
		order[i] = i
	}
	r := &Route{m: m, order: order}
	r.Recompute()

	return r
}

// NewRandomRoute returns a uniformly shuffled route drawn from rng.
func NewRandomRoute(m *CityMap, rng *rand.Rand) *Route {
	order, _ := permRange(m.n, rng) // n ≥ 3 by CityMap construction
	r := &Route{m: m, order: order}
	r.Recompute()

	return r
}

// Len returns the number of cities in the route.
func (r *Route) Len() int { return len(r.order) }

// Length returns the cached total length, wrap edge included.
func (r *Route) Length() float64 { return r.length }

// Recompute recalculates the cached length from scratch and returns it.
//
// Complexity: O(n).
func (r *Route) Recompute() float64 {
	r.length = cycleLength(r.m, r.order)

	return r.length
}

// Order returns a copy of the city order.
func (r *Route) Order() []int { return append([]int(nil), r.order...) }

// At returns the city at position pos.
// Errors: ErrIndexOutOfRange.
func (r *Route) At(pos int) (int, error) {
	if pos < 0 || pos >= len(r.order) {
		return 0, ErrIndexOutOfRange
	}

	return r.order[pos], nil
}

// Clone returns an independent copy sharing the same CityMap.
func (r *Route) Clone() *Route {
	return &Route{m: r.m, order: append([]int(nil), r.order...), length: r.length}
}

// Validate checks the permutation invariant.
func (r *Route) Validate() error { return validatePermutation(r.order, r.m.n) }

// ReversalDelta returns the length change SwapSegment(i, j) would apply.
// Positions are normalized so that i ≤ j.
//
//	Δ = d(a,c) + d(b,d) − d(a,b) − d(c,d), a=o[i−1], b=o[i], c=o[j], d=o[j+1] (cyclic).
//
// Reversing one city, n−1 cities or the whole ring yields the same cycle, so Δ == 0.
//
// Errors: ErrIndexOutOfRange.
//
// Complexity: O(1).
func (r *Route) ReversalDelta(i, j int) (float64, error) {
	var n = len(r.order)
	if i < 0 || i >= n || j < 0 || j >= n {
		return 0, ErrIndexOutOfRange
	}
	if i > j {
		i, j = j, i
	}

	return r.reversalDelta(i, j), nil
}

// reversalDelta is ReversalDelta for normalized, in-range positions.
func (r *Route) reversalDelta(i, j int) float64 {
	var (
		n   = len(r.order)
		seg = j - i + 1
	)
	if seg <= 1 || seg >= n-1 {
		return 0
	}
	a := r.order[(i-1+n)%n]
	b := r.order[i]
	c := r.order[j]
	d := r.order[(j+1)%n]

	return (r.m.at(a, c) + r.m.at(b, d)) - (r.m.at(a, b) + r.m.at(c, d))
}

// SwapSegment reverses the positions i..j (inclusive) in place and updates
// the cached length from the four touched edges.
//
// Errors: ErrIndexOutOfRange.
//
// Complexity: O(j−i) for the reversal, O(1) for the length update.
func (r *Route) SwapSegment(i, j int) error {
	var n = len(r.order)
	if i < 0 || i >= n || j < 0 || j >= n {
		return ErrIndexOutOfRange
	}
	if i > j {
		i, j = j, i
	}
	r.length += r.reversalDelta(i, j)
	reverseInPlace(r.order, i, j)

	return nil
}

// Exchange swaps the cities at positions i and j and recomputes the length.
//
// Errors: ErrIndexOutOfRange.
//
// Complexity: O(n).
func (r *Route) Exchange(i, j int) error {
	var n = len(r.order)
	if i < 0 || i >= n || j < 0 || j >= n {
		return ErrIndexOutOfRange
	}
	if i == j {
		return nil
	}
	r.order[i], r.order[j] = r.order[j], r.order[i]
	r.Recompute()

	return nil
}

// Canonical returns the order rotated to start at city 0, oriented so that
// the second city is the smaller of city 0's two neighbours. Two routes
// describe the same cycle iff their canonical orders are equal.
//
// Complexity: O(n).
func (r *Route) Canonical() []int {
	var (
		n     = len(r.order)
		out   = make([]int, n)
		pivot int
		i     int
	)
	for i = 0; i < n; i++ {
		if r.order[i] == 0 {
			pivot = i
			break
		}
	}
	for i = 0; i < n; i++ {
		out[i] = r.order[(pivot+i)%n]
	}
	if n > 2 && out[1] > out[n-1] {
		reverseInPlace(out, 1, n-1)
	}

	return out
}

// String renders the route as "[0 3 1 2 | 0] len=4.000000".
func (r *Route) String() string {
	var b strings.Builder
	b.WriteByte('[')
	var i int
	for i = range r.order {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", r.order[i])
	}
	if len(r.order) > 0 {
		fmt.Fprintf(&b, " | %d", r.order[0])
	}
	fmt.Fprintf(&b, "] len=%f", r.length)

	return b.String()
}

// validatePermutation checks that perm is a permutation of {0..n-1}.
//
// Complexity: O(n) time, O(n) space.
func validatePermutation(perm []int, n int) error {
	if len(perm) != n || n <= 0 {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidPermutation, len(perm), n)
	}
	seen := make([]bool, n)

	var (
		i int
		v int
	)
	for i = 0; i < n; i++ {
		v = perm[i]
		if v < 0 || v >= n {
			return fmt.Errorf("%w: city %d out of range at position %d", ErrInvalidPermutation, v, i)
		}
		if seen[v] {
			return fmt.Errorf("%w: city %d repeated at position %d", ErrInvalidPermutation, v, i)
		}
		seen[v] = true
	}

	return nil
}

// reverseInPlace reverses the inclusive segment a[i..k].
//
// Complexity: O(k−i) time, O(1) space.
func reverseInPlace(a []int, i, k int) {
	for i < k {
		a[i], a[k] = a[k], a[i]
		i++
		k--
	}
}
