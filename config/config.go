// Package config loads tspkit run files.
//
// A run file is YAML:
//
//	seed: 42
//	algorithm: genetic        # two_opt | genetic | som
//	max_steps: 0              # 0: run until the solver stops
//	log_level: info           # debug | info | warn | error
//	report_rate: 4            # progress lines per second
//	options:
//	  population_size: 80
//	  selection: roulette
//	cities:
//	  - [0, 0]                # sequence form
//	  - {x: 3, y: 4}          # mapping form
//
// Unknown top-level keys are rejected. The options mapping is passed to
// tsp.Session.Configure as decoded, so its keys are checked there.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/tspkit/tsp"
)

// ErrInvalidConfig is returned for run files that cannot be used.
var ErrInvalidConfig = errors.New("config: invalid run file")

// Run is one decoded run file.
type Run struct {
	Seed       int64          `yaml:"seed"`
	Algorithm  string         `yaml:"algorithm"`
	MaxSteps   int            `yaml:"max_steps"`
	LogLevel   string         `yaml:"log_level"`
	ReportRate float64        `yaml:"report_rate"`
	Options    map[string]any `yaml:"options"`
	Cities     []City         `yaml:"cities"`
}

// City is one coordinate pair, written either as [x, y] or {x: .., y: ..}.
type City tsp.Point

// UnmarshalYAML accepts both the sequence and the mapping form.
func (c *City) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("%w: line %d: city needs 2 coordinates, got %d", ErrInvalidConfig, value.Line, len(xy))
		}
		c.X, c.Y = xy[0], xy[1]

		return nil
	case yaml.MappingNode:
		var p struct {
			X *float64 `yaml:"x"`
			Y *float64 `yaml:"y"`
		}
		if err := value.Decode(&p); err != nil {
			return err
		}
		if p.X == nil || p.Y == nil {
			return fmt.Errorf("%w: line %d: city needs both x and y", ErrInvalidConfig, value.Line)
		}
		c.X, c.Y = *p.X, *p.Y

		return nil
	default:
		return fmt.Errorf("%w: line %d: city must be [x, y] or {x, y}", ErrInvalidConfig, value.Line)
	}
}

// Load reads and parses the run file at path.
func Load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, err
	}

	return Parse(data)
}

// Parse decodes and checks a run file.
//
// Errors: ErrInvalidConfig (wrapping the yaml error where there is one).
func Parse(data []byte) (Run, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Run
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return Run{}, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		if errors.Is(err, ErrInvalidConfig) {
			return Run{}, err
		}

		return Run{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := r.Validate(); err != nil {
		return Run{}, err
	}

	return r, nil
}

// Validate checks the fields the tsp package does not check itself.
func (r Run) Validate() error {
	if _, err := tsp.ParseAlgorithm(r.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if r.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must be non-negative, got %d", ErrInvalidConfig, r.MaxSteps)
	}
	if r.ReportRate < 0 {
		return fmt.Errorf("%w: report_rate must be non-negative, got %v", ErrInvalidConfig, r.ReportRate)
	}
	if _, err := r.Level(); err != nil {
		return err
	}

	return nil
}

// Points returns the cities as tsp points.
func (r Run) Points() []tsp.Point {
	out := make([]tsp.Point, len(r.Cities))
	for i, c := range r.Cities {
		out[i] = tsp.Point(c)
	}

	return out
}

// TSPOptions returns the options mapping in the form tsp expects.
func (r Run) TSPOptions() tsp.Options { return tsp.Options(r.Options) }

// Level parses log_level; empty means info.
func (r Run) Level() (slog.Level, error) {
	if r.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(r.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, r.LogLevel)
	}

	return l, nil
}
