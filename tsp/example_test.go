// Package tsp_test provides runnable, deterministic examples of the tsp
// package. Each prints a stable // Output: block.
package tsp_test

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/exp/slog"

	"github.com/katalvlaran/tspkit/tsp"
)

// quiet discards session logs so examples only print their own output.
var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// ExampleSolve runs 2-opt to convergence on a square with its centre.
func ExampleSolve() {
	points := []tsp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 5, Y: 5}}

	snap, err := tsp.Solve(context.Background(), points, tsp.AlgoTwoOpt, tsp.Options{"strategy": "best"}, 1)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("status=%s length=%.3f route=%v\n", snap.Status, snap.BestLength, snap.Route)
	// Output:
	// status=complete length=44.142 route=[0 1 2 3 4]
}

// ExampleSession_Step drives a session one pass at a time. The identity
// order of these corners crosses itself; the first pass removes the crossing
// and the second finds nothing left to improve.
func ExampleSession_Step() {
	m, err := tsp.NewCityMap([]tsp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	s := tsp.NewSession(m, tsp.WithLogger(quiet))
	if err = s.Configure(tsp.AlgoTwoOpt, nil); err != nil {
		fmt.Println("error:", err)
		return
	}

	for {
		snap, err := s.Step()
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Printf("iteration=%d length=%.3f status=%s route=%v\n", snap.Iteration, snap.BestLength, snap.Status, snap.Route)
		if snap.Final {
			break
		}
	}
	// Output:
	// iteration=1 length=4.000 status=running route=[0 2 1 3]
	// iteration=2 length=4.000 status=complete route=[0 2 1 3]
}

// ExampleSession_Run shows the report stream of a capped genetic run.
func ExampleSession_Run() {
	m, err := tsp.NewCityMap([]tsp.Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}, {X: 0, Y: 4}, {X: 1, Y: 2}})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	s := tsp.NewSession(m, tsp.WithSeed(7), tsp.WithLogger(quiet))
	if err = s.Configure(tsp.AlgoGenetic, tsp.Options{"population_size": 20, "elite_count": 2}); err != nil {
		fmt.Println("error:", err)
		return
	}

	var reports int
	final, err := s.Run(context.Background(), 4, func(tsp.Snapshot) { reports++ })
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("reports=%d iteration=%d status=%s final=%t\n", reports, final.Iteration, final.Status, final.Final)
	// Output:
	// reports=5 iteration=4 status=capped final=true
}
