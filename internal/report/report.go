// Package report assembles the caller-facing structured output types:
// a single Solution and, for Pareto-strategy runs, a ParetoFrontier of
// them. It owns nothing but presentation — every value it carries was
// already computed by internal/extract or internal/solve.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/gitrdm/scheduled/internal/extract"
	"github.com/gitrdm/scheduled/internal/objective"
)

// SolverStats reports how the search that produced a Solution behaved.
type SolverStats struct {
	SolveTime      time.Duration
	Branches       int
	Conflicts      int
	ObjectiveValue *int
}

// Status classifies the outcome of one solve attempt.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Solution is one complete scheduling result, ready for the CLI (or
// any other caller) to serialize.
type Solution struct {
	RunID              string
	Status             Status
	Schedule           []extract.ScheduleEntry
	Setups             []extract.SetupRecord
	MakespanHours      float64
	TotalLatenessHours float64
	Stats              SolverStats
}

// NewSolution assembles a Solution from an extracted schedule and the
// solver stats gathered around the solve call. runID is generated
// fresh (google/uuid) when the caller doesn't already have one to
// correlate across a multi-solve Pareto run.
func NewSolution(runID string, status Status, sched *extract.Schedule, stats SolverStats) (*Solution, error) {
	if runID == "" {
		generated, err := uuid.NewRandom()
		if err != nil {
			return nil, err
		}
		runID = generated.String()
	}
	return &Solution{
		RunID:              runID,
		Status:             status,
		Schedule:           sched.Entries,
		Setups:             sched.Setups,
		MakespanHours:      float64(sched.Metrics.Makespan) * 0.25,
		TotalLatenessHours: float64(sched.Metrics.TotalLatenessTU) * 0.25,
		Stats:              stats,
	}, nil
}

// ParetoFrontier bundles every non-dominated Solution from a
// Pareto-strategy run alongside the trade-off analysis computed over
// their objective values.
type ParetoFrontier struct {
	RunID     string
	Solutions []*Solution
	Analysis  objective.TradeOffAnalysis
}

// NewParetoFrontier assembles a ParetoFrontier from solutions already
// filtered down to non-dominated members (see objective.Frontier).
func NewParetoFrontier(solutions []*Solution, points []objective.ParetoSolution) (*ParetoFrontier, error) {
	runID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &ParetoFrontier{
		RunID:     runID.String(),
		Solutions: solutions,
		Analysis:  objective.Analyze(points),
	}, nil
}
