// Package tsp - distance model shared by all solvers.
//
// CityMap holds the input cities and a precomputed Euclidean distance table.
// It is built once per problem and never mutated afterwards, so a single
// *CityMap may be shared read-only by any number of concurrent sessions.
//
// Storage mirrors a row-major dense matrix: dist[i*n+j] == d(i,j).
package tsp

import "math"

// minCities is the smallest instance any solver accepts.
const minCities = 3

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// City is an input point with its stable index.
type City struct {
	ID int
	Point
}

// CityMap is the immutable distance model of one problem instance.
type CityMap struct {
	cities []City
	n      int
	dist   []float64 // flat n*n table, row-major
}

// NewCityMap validates points and builds the symmetric distance table.
//
// Contracts:
//   - len(points) ≥ 3.
//   - every coordinate is finite, and so is every pairwise distance.
//
// Errors: ErrInvalidInput.
//
// Complexity: O(n²) time and memory.
func NewCityMap(points []Point) (*CityMap, error) {
	var n = len(points)
	if n < minCities {
		return nil, invalidf("need at least %d cities, got %d", minCities, n)
	}

	cities := make([]City, n)
	var i, j int
	for i = 0; i < n; i++ {
		if !finite(points[i].X) || !finite(points[i].Y) {
			return nil, invalidf("city %d has non-finite coordinates (%v, %v)", i, points[i].X, points[i].Y)
		}
		cities[i] = City{ID: i, Point: points[i]}
	}

	dist := make([]float64, n*n)
	var d float64
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			d = cities[i].Dist(cities[j].Point)
			// Finite coordinates can still overflow the difference.
			if !finite(d) {
				return nil, invalidf("distance between cities %d and %d is not finite", i, j)
			}
			dist[i*n+j] = d
			dist[j*n+i] = d
		}
	}

	return &CityMap{cities: cities, n: n, dist: dist}, nil
}

// Len returns the number of cities.
func (m *CityMap) Len() int { return m.n }

// Distance returns d(i,j) in O(1).
// Errors: ErrIndexOutOfRange.
func (m *CityMap) Distance(i, j int) (float64, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, ErrIndexOutOfRange
	}

	return m.dist[i*m.n+j], nil
}

// at is the unchecked hot-path accessor; callers guarantee the range.
func (m *CityMap) at(i, j int) float64 { return m.dist[i*m.n+j] }

// City returns the city with the given index.
// Errors: ErrIndexOutOfRange.
func (m *CityMap) City(i int) (City, error) {
	if i < 0 || i >= m.n {
		return City{}, ErrIndexOutOfRange
	}

	return m.cities[i], nil
}

// Cities returns a copy of all cities in index order.
func (m *CityMap) Cities() []City {
	out := make([]City, m.n)
	copy(out, m.cities)

	return out
}

// Bounds returns the lower-left and upper-right corners of the bounding box.
func (m *CityMap) Bounds() (lo, hi Point) {
	lo, hi = m.cities[0].Point, m.cities[0].Point
	var i int
	for i = 1; i < m.n; i++ {
		p := m.cities[i].Point
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}

	return lo, hi
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
