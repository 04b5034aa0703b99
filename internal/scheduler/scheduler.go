// Package scheduler names the external collaborator interfaces the
// core assumes but does not implement: where a Problem comes from,
// where its solver parameters and multi-objective policy come from,
// and where a finished Solution goes. Concrete adapters (a file
// loader, a database-backed parameter store, a message-bus sink) live
// outside this module's scope; cmd/scheduled implements only a
// stdout-backed ScheduleSink for CLI use.
package scheduler

import (
	"context"

	"github.com/gitrdm/scheduled/internal/objective"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/report"
	"github.com/gitrdm/scheduled/internal/solve"
)

// ProblemLoader produces a validated Problem from whatever backing
// store a caller wires in (a file, an API, a database snapshot).
type ProblemLoader interface {
	LoadProblem(ctx context.Context) (*problem.Problem, error)
}

// ParameterRegistry supplies the solver parameters and multi-objective
// configuration for one run. Implementations may read these from
// flags, a config file, or a remote policy service; the core only
// needs the resolved values.
type ParameterRegistry interface {
	SolverParams(ctx context.Context) (solve.Params, error)
	ObjectiveConfig(ctx context.Context) (*objective.MultiObjectiveConfig, error)
}

// ScheduleSink receives a finished Solution (or ParetoFrontier, for
// Pareto-strategy runs) for whatever downstream use the caller has:
// persistence, display, or forwarding to a scheduling UI.
type ScheduleSink interface {
	WriteSolution(ctx context.Context, sol *report.Solution) error
	WriteFrontier(ctx context.Context, frontier *report.ParetoFrontier) error
}
