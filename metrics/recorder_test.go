package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tspkit/metrics"
	"github.com/katalvlaran/tspkit/tsp"
)

func TestRecorder_CountsSessionProgress(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	m, err := tsp.NewCityMap([]tsp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	require.NoError(t, err)
	s := tsp.NewSession(m, tsp.WithObserver(rec))
	require.NoError(t, s.Configure(tsp.AlgoTwoOpt, nil))

	final, err := s.Run(context.Background(), 0, nil)
	require.NoError(t, err)
	require.Equal(t, tsp.StatusComplete, final.Status)

	// One improving pass, one empty pass.
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Steps.WithLabelValues("two_opt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Runs.WithLabelValues("two_opt", "complete")))
	assert.Equal(t, 4.0, testutil.ToFloat64(rec.BestLength.WithLabelValues("two_opt")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.StepDuration))

	n, err := testutil.GatherAndCount(reg,
		"tspkit_steps_total", "tspkit_runs_total", "tspkit_best_length", "tspkit_step_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestRecorder_RegistrationConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	_, err = metrics.NewRecorder(reg)
	require.Error(t, err)

	rec, err := metrics.NewRecorder(nil)
	require.NoError(t, err)
	rec.OnFinish(tsp.Snapshot{Algorithm: tsp.AlgoSOM, Status: tsp.StatusCancelled, BestLength: 2})
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Runs.WithLabelValues("som", "cancelled")))
}
