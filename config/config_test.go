package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/katalvlaran/tspkit/config"
	"github.com/katalvlaran/tspkit/tsp"
)

const sample = `
seed: 42
algorithm: genetic
max_steps: 50
log_level: debug
report_rate: 2.5
options:
  population_size: 40
  mutation_rate: 0.05
  selection: roulette
cities:
  - [0, 0]
  - {x: 3, y: 4}
  - [6, 0]
`

func TestParse_Sample(t *testing.T) {
	r, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, int64(42), r.Seed)
	assert.Equal(t, "genetic", r.Algorithm)
	assert.Equal(t, 50, r.MaxSteps)
	assert.Equal(t, 2.5, r.ReportRate)
	assert.Equal(t, []tsp.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 0}}, r.Points())

	lvl, err := r.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	// Decoded options are accepted as they are.
	m, err := tsp.NewCityMap(r.Points())
	require.NoError(t, err)
	require.NoError(t, tsp.NewSession(m).Configure(tsp.AlgoGenetic, r.TSPOptions()))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"unknown key":        "algorithm: som\nalgo: som\n",
		"unknown algorithm":  "algorithm: annealing\n",
		"missing algorithm":  "seed: 1\n",
		"negative max_steps": "algorithm: som\nmax_steps: -1\n",
		"negative rate":      "algorithm: som\nreport_rate: -1\n",
		"bad log level":      "algorithm: som\nlog_level: loud\n",
		"three coordinates":  "algorithm: som\ncities:\n  - [1, 2, 3]\n",
		"missing y":          "algorithm: som\ncities:\n  - {x: 1}\n",
		"scalar city":        "algorithm: som\ncities:\n  - 7\n",
		"text coordinate":    "algorithm: som\ncities:\n  - [a, b]\n",
		"not yaml":           "algorithm: [unclosed\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	r, err := config.Load(path)
	require.NoError(t, err)
	assert.Len(t, r.Cities, 3)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
