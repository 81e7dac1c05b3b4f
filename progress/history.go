package progress

import (
	"sync"

	"github.com/katalvlaran/tspkit/tsp"
)

// History accumulates the convergence curve of a run: iteration and best
// length of every snapshot, and optionally the route, for plotting or
// animating the run afterwards.
type History struct {
	keepRoutes bool

	mu         sync.Mutex
	iterations []int
	lengths    []float64
	routes     [][]int
	final      *tsp.Snapshot
}

// NewHistory returns an empty history. With keepRoutes every route is
// copied and kept, which costs O(n) memory per snapshot.
func NewHistory(keepRoutes bool) *History {
	return &History{keepRoutes: keepRoutes}
}

// Record is a tsp.Reporter.
func (h *History) Record(snap tsp.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.iterations = append(h.iterations, snap.Iteration)
	h.lengths = append(h.lengths, snap.BestLength)
	if h.keepRoutes {
		h.routes = append(h.routes, append([]int(nil), snap.Route...))
	}
	if snap.Final {
		cp := snap
		cp.Route = append([]int(nil), snap.Route...)
		h.final = &cp
	}
}

// Len returns the number of recorded snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.iterations)
}

// Series returns copies of the recorded iterations and best lengths.
func (h *History) Series() ([]int, []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]int(nil), h.iterations...), append([]float64(nil), h.lengths...)
}

// Routes returns copies of the recorded routes; empty unless keepRoutes.
func (h *History) Routes() [][]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([][]int, len(h.routes))
	for i, r := range h.routes {
		out[i] = append([]int(nil), r...)
	}

	return out
}

// Final returns the final snapshot, if one was recorded.
func (h *History) Final() (tsp.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.final == nil {
		return tsp.Snapshot{}, false
	}

	out := *h.final
	out.Route = append([]int(nil), h.final.Route...)

	return out, true
}

// Improvements counts the snapshots whose best length is strictly below
// the previous snapshot's.
func (h *History) Improvements() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var count int
	for i := 1; i < len(h.lengths); i++ {
		if h.lengths[i] < h.lengths[i-1] {
			count++
		}
	}

	return count
}
