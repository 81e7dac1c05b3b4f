// Package tsp - named option parsing for Session.Configure.
//
// Options is the loosely typed mapping a host passes in (decoded YAML or
// JSON, or built by hand). Each algorithm owns a fixed key set; any other
// key, any value of the wrong kind and any out-of-range value is rejected
// with ErrInvalidInput before a solver is built. Missing keys keep the
// Default*Options value.
//
// Numbers are accepted as int, int64 or float64 because that is what the
// yaml.v3 and encoding/json decoders produce; integer keys additionally
// require an integral value.
package tsp

import (
	"math"
	"sort"
)

// Options is the per-algorithm option mapping.
type Options map[string]any

// optionSetters maps every known key of one algorithm to its setter.
type optionSetters[T any] map[string]func(o *T, v any) error

var twoOptKeys = optionSetters[TwoOptOptions]{
	"strategy": func(o *TwoOptOptions, v any) error {
		s, ok := asString(v)
		if !ok {
			return typeError("strategy", "a string", v)
		}
		switch s {
		case "first":
			o.Strategy = FirstImprovement
		case "best":
			o.Strategy = BestImprovement
		default:
			return invalidf("strategy must be first or best, got %q", s)
		}

		return nil
	},
	"max_passes":            intSetter("max_passes", func(o *TwoOptOptions, n int) { o.MaxPasses = n }),
	"epsilon":               floatSetter("epsilon", func(o *TwoOptOptions, f float64) { o.Epsilon = f }),
	"improvement_threshold": floatSetter("improvement_threshold", func(o *TwoOptOptions, f float64) { o.ImprovementThreshold = f }),
}

var geneticKeys = optionSetters[GeneticOptions]{
	"population_size":  intSetter("population_size", func(o *GeneticOptions, n int) { o.PopulationSize = n }),
	"elite_count":      intSetter("elite_count", func(o *GeneticOptions, n int) { o.EliteCount = n }),
	"mutation_rate":    floatSetter("mutation_rate", func(o *GeneticOptions, f float64) { o.MutationRate = f }),
	"max_generations":  intSetter("max_generations", func(o *GeneticOptions, n int) { o.MaxGenerations = n }),
	"stagnation_limit": intSetter("stagnation_limit", func(o *GeneticOptions, n int) { o.StagnationLimit = n }),
	"tournament_size":  intSetter("tournament_size", func(o *GeneticOptions, n int) { o.TournamentSize = n }),
	"selection": func(o *GeneticOptions, v any) error {
		s, ok := asString(v)
		if !ok {
			return typeError("selection", "a string", v)
		}
		switch s {
		case "tournament":
			o.Selection = TournamentSelection
		case "roulette":
			o.Selection = RouletteSelection
		default:
			return invalidf("selection must be tournament or roulette, got %q", s)
		}

		return nil
	},
}

var somKeys = optionSetters[SOMOptions]{
	"ring_size":             intSetter("ring_size", func(o *SOMOptions, n int) { o.RingSize = n }),
	"initial_learning_rate": floatSetter("initial_learning_rate", func(o *SOMOptions, f float64) { o.InitialLearningRate = f }),
	"learning_decay":        floatSetter("learning_decay", func(o *SOMOptions, f float64) { o.LearningDecay = f }),
	"initial_radius":        floatSetter("initial_radius", func(o *SOMOptions, f float64) { o.InitialRadius = f }),
	"radius_decay":          floatSetter("radius_decay", func(o *SOMOptions, f float64) { o.RadiusDecay = f }),
	"max_iterations":        intSetter("max_iterations", func(o *SOMOptions, n int) { o.MaxIterations = n }),
	"convergence_threshold": floatSetter("convergence_threshold", func(o *SOMOptions, f float64) { o.ConvergenceThreshold = f }),
	"min_learning_rate":     floatSetter("min_learning_rate", func(o *SOMOptions, f float64) { o.MinLearningRate = f }),
	"min_radius":            floatSetter("min_radius", func(o *SOMOptions, f float64) { o.MinRadius = f }),
}

func parseTwoOptOptions(options Options) (TwoOptOptions, error) {
	o := DefaultTwoOptOptions()
	if err := applyOptions(&o, options, twoOptKeys); err != nil {
		return TwoOptOptions{}, err
	}

	return o, o.Validate()
}

func parseGeneticOptions(options Options) (GeneticOptions, error) {
	o := DefaultGeneticOptions()
	if err := applyOptions(&o, options, geneticKeys); err != nil {
		return GeneticOptions{}, err
	}

	return o, o.Validate()
}

func parseSOMOptions(options Options) (SOMOptions, error) {
	o := DefaultSOMOptions()
	if err := applyOptions(&o, options, somKeys); err != nil {
		return SOMOptions{}, err
	}

	return o, o.Validate()
}

// applyOptions runs the setter of every key in sorted order, so the first
// reported problem does not depend on map iteration.
func applyOptions[T any](o *T, options Options, setters optionSetters[T]) error {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			return invalidf("unknown option %q", k)
		}
		if err := set(o, options[k]); err != nil {
			return err
		}
	}

	return nil
}

func intSetter[T any](key string, assign func(*T, int)) func(*T, any) error {
	return func(o *T, v any) error {
		n, err := asInt(key, v)
		if err != nil {
			return err
		}
		assign(o, n)

		return nil
	}
}

func floatSetter[T any](key string, assign func(*T, float64)) func(*T, any) error {
	return func(o *T, v any) error {
		f, ok := asFloat64(v)
		if !ok {
			return typeError(key, "a number", v)
		}
		assign(o, f)

		return nil
	}
}

func typeError(key, want string, v any) error {
	return invalidf("option %q must be %s, got %T", key, want, v)
}

func asString(v any) (string, bool) {
	s, ok := v.(string)

	return s, ok
}

// asInt accepts integer kinds and integral float64 values that fit an int.
func asInt(key string, v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		if int64(int(x)) != x {
			return 0, outOfRange(key, v)
		}

		return int(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, typeError(key, "an integer", v)
		}
		if x < math.MinInt || x >= math.MaxInt {
			return 0, outOfRange(key, v)
		}

		return int(x), nil
	default:
		return 0, typeError(key, "an integer", v)
	}
}

func outOfRange(key string, v any) error {
	return invalidf("option %q is out of range, got %v", key, v)
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
