// Package metrics exports solver progress as Prometheus metrics.
//
// A Recorder is a tsp.Observer: attach it with tsp.WithObserver and every
// step and finished run of that session is counted. One Recorder may be
// shared by any number of sessions; the underlying collectors are safe for
// concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/tspkit/tsp"
)

// Namespace prefixes every metric name.
const Namespace = "tspkit"

// Recorder holds the solver collectors.
type Recorder struct {
	Steps        *prometheus.CounterVec
	Runs         *prometheus.CounterVec
	BestLength   *prometheus.GaugeVec
	StepDuration *prometheus.HistogramVec
}

var _ tsp.Observer = (*Recorder)(nil)

// NewRecorder builds the collectors and registers them on reg. A nil reg
// leaves them unregistered.
//
// Errors: registration conflicts from reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "steps_total", Help: "Solver steps executed."},
			[]string{"algorithm"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "runs_total", Help: "Finished runs by terminal status."},
			[]string{"algorithm", "status"},
		),
		BestLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: Namespace, Name: "best_length", Help: "Best tour length of the latest step."},
			[]string{"algorithm"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "step_duration_seconds",
				Help:      "Wall time of one solver step.",
				Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"algorithm"},
		),
	}
	if reg == nil {
		return r, nil
	}
	for _, c := range []prometheus.Collector{r.Steps, r.Runs, r.BestLength, r.StepDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// OnStep implements tsp.Observer.
func (r *Recorder) OnStep(snap tsp.Snapshot, elapsed time.Duration) {
	algo := string(snap.Algorithm)
	r.Steps.WithLabelValues(algo).Inc()
	r.BestLength.WithLabelValues(algo).Set(snap.BestLength)
	r.StepDuration.WithLabelValues(algo).Observe(elapsed.Seconds())
}

// OnFinish implements tsp.Observer.
func (r *Recorder) OnFinish(snap tsp.Snapshot) {
	algo := string(snap.Algorithm)
	r.Runs.WithLabelValues(algo, snap.Status.String()).Inc()
	r.BestLength.WithLabelValues(algo).Set(snap.BestLength)
}
