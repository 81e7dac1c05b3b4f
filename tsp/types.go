package tsp

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the tsp package.
var (
	// ErrInvalidInput covers rejected configuration: fewer than three cities,
	// non-finite coordinates, malformed or out-of-range options.
	// It is only ever returned before solving begins.
	ErrInvalidInput = errors.New("tsp: invalid input")

	// ErrInvalidPermutation is returned when a city order is not a permutation
	// of 0..n-1. From a solver mutator it indicates an internal bug.
	ErrInvalidPermutation = errors.New("tsp: order is not a permutation")

	// ErrIndexOutOfRange is returned for a city or position index outside [0, n).
	ErrIndexOutOfRange = errors.New("tsp: index out of range")

	// ErrUnsupportedAlgorithm is returned (together with ErrInvalidInput) for an
	// algorithm selector other than two_opt, genetic or som.
	ErrUnsupportedAlgorithm = errors.New("tsp: unsupported algorithm")

	// ErrNotConfigured is returned by Session methods called before Configure.
	ErrNotConfigured = errors.New("tsp: session not configured")
)

// invalidf wraps ErrInvalidInput with a formatted reason.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// Algorithm selects one of the three solver strategies.
type Algorithm string

const (
	// AlgoTwoOpt is 2-opt local search improvement.
	AlgoTwoOpt Algorithm = "two_opt"
	// AlgoGenetic is the population-based genetic algorithm.
	AlgoGenetic Algorithm = "genetic"
	// AlgoSOM is the self-organizing map (elastic ring) heuristic.
	AlgoSOM Algorithm = "som"
)

// ParseAlgorithm maps a selector string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgoTwoOpt, AlgoGenetic, AlgoSOM:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrUnsupportedAlgorithm, s)
	}
}

// Phase is the state-machine position of a solver.
//
//	two_opt: Idle → Improving → Converged
//	genetic: Idle → Evolving  → Terminated
//	som:     Idle → Relaxing  → Converged
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseImproving
	PhaseEvolving
	PhaseRelaxing
	PhaseConverged
	PhaseTerminated
)

// Done reports whether the phase is terminal.
func (p Phase) Done() bool { return p == PhaseConverged || p == PhaseTerminated }

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseImproving:
		return "improving"
	case PhaseEvolving:
		return "evolving"
	case PhaseRelaxing:
		return "relaxing"
	case PhaseConverged:
		return "converged"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Status describes a snapshot's place in a run.
type Status uint8

const (
	// StatusRunning marks an intermediate snapshot.
	StatusRunning Status = iota
	// StatusComplete marks a run whose solver converged or terminated on its own criterion.
	StatusComplete
	// StatusCapped marks a run stopped by an iteration cap (solver or Run maxSteps).
	StatusCapped
	// StatusCancelled marks a run stopped by Cancel or context cancellation.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusComplete:
		return "complete"
	case StatusCapped:
		return "capped"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText lets snapshots encode their status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is one progress report of a session.
type Snapshot struct {
	SessionID  string    `json:"session_id"`
	Algorithm  Algorithm `json:"algorithm"`
	Iteration  int       `json:"iteration"`
	BestLength float64   `json:"best_length"`
	Route      []int     `json:"route"`
	Status     Status    `json:"status"`
	Final      bool      `json:"final"`
}

// Reporter receives snapshots emitted by Session.Run.
type Reporter func(Snapshot)
