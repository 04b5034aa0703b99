// Package objective builds optimization targets over the FDVariables
// internal/constraints already compiled, and composes them under one
// of several multi-objective strategies. It never posts new
// constraint families of its own: every WeightedObjective resolves to
// an existing FDVariable (or a LinearSum-combined aggregate of them).
package objective

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/scherr"
)

// Kind enumerates the objective expressions the builder knows how to
// resolve against a constraints.Result.
type Kind int

const (
	MinimizeMakespan Kind = iota
	MinimizeTotalLateness
	MinimizeMaximumLateness
	MinimizeTotalCost
	MinimizeTotalTardiness
	MinimizeWeightedCompletionTime
	MaximizeMachineUtilization
	MinimizeSetupTime
)

func (k Kind) String() string {
	switch k {
	case MinimizeMakespan:
		return "MinimizeMakespan"
	case MinimizeTotalLateness:
		return "MinimizeTotalLateness"
	case MinimizeMaximumLateness:
		return "MinimizeMaximumLateness"
	case MinimizeTotalCost:
		return "MinimizeTotalCost"
	case MinimizeTotalTardiness:
		return "MinimizeTotalTardiness"
	case MinimizeWeightedCompletionTime:
		return "MinimizeWeightedCompletionTime"
	case MaximizeMachineUtilization:
		return "MaximizeMachineUtilization"
	case MinimizeSetupTime:
		return "MinimizeSetupTime"
	default:
		return "Unknown"
	}
}

// minimizes reports whether this objective kind is a minimization
// (false for the maximization kinds, of which there is currently one).
func (k Kind) minimizes() bool {
	return k != MaximizeMachineUtilization
}

// WeightedObjective is one term of a MultiObjectiveConfig.
type WeightedObjective struct {
	Kind     Kind
	Weight   float64
	Priority int
	// EpsilonBound is the bound applied to this objective when it is
	// not the free objective under the EpsilonConstraint strategy.
	EpsilonBound *int
	// Target, if set, is used only as a hint for trade-off analysis'
	// "closest to ideal point" recommendation.
	Target *int
}

// Strategy selects how a MultiObjectiveConfig's objectives are
// combined into one or more solver calls.
type Strategy int

const (
	Lexicographic Strategy = iota
	WeightedSum
	EpsilonConstraint
	ParetoOptimal
)

func (s Strategy) String() string {
	switch s {
	case Lexicographic:
		return "Lexicographic"
	case WeightedSum:
		return "WeightedSum"
	case EpsilonConstraint:
		return "EpsilonConstraint"
	case ParetoOptimal:
		return "ParetoOptimal"
	default:
		return "Unknown"
	}
}

// MultiObjectiveConfig is the caller-supplied optimization policy.
type MultiObjectiveConfig struct {
	Strategy   Strategy
	Objectives []WeightedObjective
	// Tolerance is the lexicographic relaxation factor applied when
	// freezing a higher-priority objective before solving the next
	// (best * (1 + Tolerance)). Defaults to 0.01 when zero.
	Tolerance float64
}

// Validate checks the config's internal consistency: weights summing
// to 1 for WeightedSum, unique priorities for Lexicographic, and
// exactly one un-bounded (free) objective for EpsilonConstraint.
// Accumulated failures are reported as one *scherr.Error{Kind:
// ConfigError}, matching the validation idiom internal/problem uses.
func (c *MultiObjectiveConfig) Validate() error {
	list := scherr.NewList(scherr.ConfigError)

	if len(c.Objectives) == 0 {
		list.Add("multi-objective config must declare at least one objective")
		return list.Build()
	}

	switch c.Strategy {
	case WeightedSum:
		sum := 0.0
		for _, o := range c.Objectives {
			if o.Weight < 0 {
				list.Add("objective %s has negative weight %f", o.Kind, o.Weight)
			}
			sum += o.Weight
		}
		if diff := sum - 1.0; diff > 1e-6 || diff < -1e-6 {
			list.Add("weighted-sum weights must sum to 1.0, got %f", sum)
		}
	case Lexicographic:
		seen := make(map[int]bool, len(c.Objectives))
		for _, o := range c.Objectives {
			if o.Priority < 1 {
				list.Add("objective %s has priority %d, must be >= 1", o.Kind, o.Priority)
				continue
			}
			if seen[o.Priority] {
				list.Add("duplicate lexicographic priority %d", o.Priority)
			}
			seen[o.Priority] = true
		}
	case EpsilonConstraint:
		free := 0
		for _, o := range c.Objectives {
			if o.EpsilonBound == nil {
				free++
			}
		}
		if free != 1 {
			list.Add("epsilon-constraint strategy requires exactly one objective without an epsilon_bound, found %d", free)
		}
	case ParetoOptimal:
		if len(c.Objectives) < 2 {
			list.Add("pareto strategy requires at least 2 objectives, found %d", len(c.Objectives))
		}
	default:
		list.Add("unknown multi-objective strategy %v", c.Strategy)
	}

	return list.Build()
}

// VariableSource maps an objective Kind to its compiled FDVariable (or
// a LinearSum-combined aggregate of several). The caller (cmd/scheduled)
// builds one from a constraints.Result and hands it to internal/solve's
// driver.
type VariableSource struct {
	Makespan                  *cpengine.FDVariable
	TotalLateness             *cpengine.FDVariable
	MaxLateness               *cpengine.FDVariable
	TotalCost                 *cpengine.FDVariable
	TotalTardiness            *cpengine.FDVariable
	WeightedCompletionTime    *cpengine.FDVariable
	MachineUtilization        *cpengine.FDVariable
	TotalSetupTime            *cpengine.FDVariable
}

// Resolve looks up the FDVariable backing one objective Kind.
func (v *VariableSource) Resolve(k Kind) (*cpengine.FDVariable, error) {
	var fd *cpengine.FDVariable
	switch k {
	case MinimizeMakespan:
		fd = v.Makespan
	case MinimizeTotalLateness:
		fd = v.TotalLateness
	case MinimizeMaximumLateness:
		fd = v.MaxLateness
	case MinimizeTotalCost:
		fd = v.TotalCost
	case MinimizeTotalTardiness:
		fd = v.TotalTardiness
	case MinimizeWeightedCompletionTime:
		fd = v.WeightedCompletionTime
	case MaximizeMachineUtilization:
		fd = v.MachineUtilization
	case MinimizeSetupTime:
		fd = v.TotalSetupTime
	default:
		return nil, fmt.Errorf("objective: unknown kind %v", k)
	}
	if fd == nil {
		return nil, fmt.Errorf("objective: %s has no backing variable in this problem (feature not present)", k)
	}
	return fd, nil
}

// Minimizes reports whether k is minimized by SolveOptimal (vs.
// maximized).
func Minimizes(k Kind) bool { return k.minimizes() }
