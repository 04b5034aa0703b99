// Package solve drives cpengine's branch-and-bound search against a
// compiled model, applying whichever multi-objective strategy the
// caller's objective.MultiObjectiveConfig selects. It is the single
// place that calls Solver.SolveOptimalWithOptions; every strategy
// variant (lexicographic freezing, epsilon-constraint bounding,
// weighted-sum aggregation, Pareto sweeping) is sequential orchestration
// over that one primitive.
package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/objective"
	"github.com/gitrdm/scheduled/internal/scherr"
)

// Params configures one solve run.
type Params struct {
	TimeLimit       time.Duration
	NodeLimit       int
	ParallelWorkers int
}

func (p Params) options() []cpengine.OptimizeOption {
	var opts []cpengine.OptimizeOption
	if p.TimeLimit > 0 {
		opts = append(opts, cpengine.WithTimeLimit(p.TimeLimit))
	}
	if p.NodeLimit > 0 {
		opts = append(opts, cpengine.WithNodeLimit(p.NodeLimit))
	}
	if p.ParallelWorkers > 1 {
		opts = append(opts, cpengine.WithParallelWorkers(p.ParallelWorkers))
	}
	return opts
}

// Outcome is one complete solve result: the bound value for every
// model variable (indexed by FDVariable.ID()), plus the per-objective
// values actually achieved.
type Outcome struct {
	Values     []int
	Objectives map[objective.Kind]int
	Feasible   bool
}

// Driver orchestrates solves over one cpengine.Model against one
// objective.MultiObjectiveConfig.
type Driver struct {
	Model  *cpengine.Model
	Source *objective.VariableSource
	log    hclog.Logger
}

// New creates a Driver. log may be nil.
func New(model *cpengine.Model, source *objective.VariableSource, log hclog.Logger) *Driver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Driver{Model: model, Source: source, log: log.Named("solve")}
}

// Run executes cfg's strategy and returns the single best Outcome
// (Lexicographic, WeightedSum, EpsilonConstraint) or, for
// ParetoOptimal, the non-dominated frontier collapsed to its
// recommended member. Callers wanting the full frontier should call
// RunPareto directly.
func (d *Driver) Run(ctx context.Context, cfg *objective.MultiObjectiveConfig, p Params) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case objective.Lexicographic:
		return d.runLexicographic(ctx, cfg, p)
	case objective.WeightedSum:
		return d.runWeightedSum(ctx, cfg, p)
	case objective.EpsilonConstraint:
		return d.runEpsilonConstraint(ctx, cfg, p)
	case objective.ParetoOptimal:
		frontier, err := d.RunPareto(ctx, cfg, p)
		if err != nil {
			return nil, err
		}
		if len(frontier) == 0 {
			return &Outcome{Feasible: false}, nil
		}
		analysis := objective.Analyze(toParetoSolutions(frontier))
		idx := analysis.Recommended
		if idx < 0 {
			idx = 0
		}
		return frontier[idx], nil
	default:
		return nil, fmt.Errorf("solve: unknown strategy %v", cfg.Strategy)
	}
}

func (d *Driver) solveOne(ctx context.Context, obj *cpengine.FDVariable, minimize bool, p Params) (*Outcome, error) {
	solver := cpengine.NewSolver(d.Model)
	vals, objVal, err := solver.SolveOptimalWithOptions(ctx, obj, minimize, p.options()...)
	if err != nil && err != context.DeadlineExceeded {
		return nil, err
	}
	if vals == nil {
		return &Outcome{Feasible: false}, nil
	}
	return &Outcome{
		Values:     vals,
		Objectives: map[objective.Kind]int{},
		Feasible:   true,
	}, d.annotateError(err, objVal)
}

// annotateError turns a deadline-exceeded signal from the engine into
// the core's Timeout error kind, while still letting the caller use
// the (feasible, best-effort) Outcome it came with.
func (d *Driver) annotateError(err error, _ int) error {
	if err == context.DeadlineExceeded {
		return scherr.New(scherr.Timeout, "solver exhausted its time budget before proving optimality")
	}
	return nil
}

func (d *Driver) runLexicographic(ctx context.Context, cfg *objective.MultiObjectiveConfig, p Params) (*Outcome, error) {
	ordered := make([]objective.WeightedObjective, len(cfg.Objectives))
	copy(ordered, cfg.Objectives)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Priority < ordered[i].Priority {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = 0.01
	}

	var last *Outcome
	for _, wo := range ordered {
		fd, err := d.Source.Resolve(wo.Kind)
		if err != nil {
			return nil, err
		}
		minimize := objective.Minimizes(wo.Kind)
		out, err := d.solveOne(ctx, fd, minimize, p)
		if err != nil {
			return nil, err
		}
		if !out.Feasible {
			return out, nil
		}
		bound := valueAt(out.Values, fd)
		out.Objectives[wo.Kind] = bound
		last = out

		frozen := int(float64(bound) * (1 + tolerance))
		if !minimize {
			frozen = int(float64(bound) * (1 - tolerance))
		}
		constVar := d.Model.NewVariable(cpengine.DomainValues(clampDomain(fd, frozen)))
		kind := cpengine.LessEqual
		if !minimize {
			kind = cpengine.GreaterEqual
		}
		ineq, err := cpengine.NewInequality(fd, constVar, kind)
		if err != nil {
			return nil, fmt.Errorf("lexicographic freeze for %s: %w", wo.Kind, err)
		}
		d.Model.AddConstraint(ineq)
	}
	return last, nil
}

func (d *Driver) runWeightedSum(ctx context.Context, cfg *objective.MultiObjectiveConfig, p Params) (*Outcome, error) {
	const scale = 1000
	var vars []*cpengine.FDVariable
	var coeffs []int
	maxTotal := 0
	for _, wo := range cfg.Objectives {
		fd, err := d.Source.Resolve(wo.Kind)
		if err != nil {
			return nil, err
		}
		w := int(wo.Weight * scale)
		if !objective.Minimizes(wo.Kind) {
			w = -w
		}
		vars = append(vars, fd)
		coeffs = append(coeffs, w)
		if w > 0 {
			maxTotal += w * fd.Domain().MaxValue()
		} else {
			maxTotal += -w * fd.Domain().MaxValue()
		}
	}

	aggVar := d.Model.IntVar(1, maxTotal*2+2, "weighted_sum_objective")
	sum, err := cpengine.NewLinearSum(vars, coeffs, aggVar)
	if err != nil {
		return nil, fmt.Errorf("weighted-sum aggregate: %w", err)
	}
	d.Model.AddConstraint(sum)

	out, err := d.solveOne(ctx, aggVar, true, p)
	if err != nil {
		return nil, err
	}
	if out.Feasible {
		for _, wo := range cfg.Objectives {
			fd, _ := d.Source.Resolve(wo.Kind)
			out.Objectives[wo.Kind] = valueAt(out.Values, fd)
		}
	}
	return out, nil
}

func (d *Driver) runEpsilonConstraint(ctx context.Context, cfg *objective.MultiObjectiveConfig, p Params) (*Outcome, error) {
	var free *objective.WeightedObjective
	for i := range cfg.Objectives {
		wo := &cfg.Objectives[i]
		if wo.EpsilonBound == nil {
			free = wo
			continue
		}
		fd, err := d.Source.Resolve(wo.Kind)
		if err != nil {
			return nil, err
		}
		minimize := objective.Minimizes(wo.Kind)
		constVar := d.Model.NewVariable(cpengine.DomainValues(clampDomain(fd, *wo.EpsilonBound)))
		kind := cpengine.LessEqual
		if !minimize {
			kind = cpengine.GreaterEqual
		}
		ineq, err := cpengine.NewInequality(fd, constVar, kind)
		if err != nil {
			return nil, fmt.Errorf("epsilon bound for %s: %w", wo.Kind, err)
		}
		d.Model.AddConstraint(ineq)
	}
	if free == nil {
		return nil, fmt.Errorf("epsilon-constraint: no free objective (config validation should have caught this)")
	}

	fd, err := d.Source.Resolve(free.Kind)
	if err != nil {
		return nil, err
	}
	out, err := d.solveOne(ctx, fd, objective.Minimizes(free.Kind), p)
	if err != nil {
		return nil, err
	}
	if out.Feasible {
		out.Objectives[free.Kind] = valueAt(out.Values, fd)
		for i := range cfg.Objectives {
			wo := &cfg.Objectives[i]
			if wo.EpsilonBound != nil {
				ofd, _ := d.Source.Resolve(wo.Kind)
				out.Objectives[wo.Kind] = valueAt(out.Values, ofd)
			}
		}
	}
	return out, nil
}

// RunPareto sweeps a secondary objective across a small number of
// epsilon steps between its achievable bounds, solving the primary
// objective at each step, then filters the collected solutions down
// to the non-dominated frontier. The bounds are posted on the shared
// model from the loosest to the tightest, so each step's bound is the
// one in force. Only the first two objectives in
// cfg.Objectives participate in the sweep; additional objectives are
// recorded on each Outcome but not used to shape the sweep.
func (d *Driver) RunPareto(ctx context.Context, cfg *objective.MultiObjectiveConfig, p Params) ([]*Outcome, error) {
	if len(cfg.Objectives) < 2 {
		return nil, fmt.Errorf("pareto: requires at least 2 objectives")
	}
	const steps = 5

	primary := cfg.Objectives[0]
	secondary := cfg.Objectives[1]

	secFD, err := d.Source.Resolve(secondary.Kind)
	if err != nil {
		return nil, err
	}
	lo, hi := secFD.Domain().Min(), secFD.Domain().Max()
	if hi < lo {
		hi = lo
	}

	var results []*Outcome
	for i := 0; i < steps; i++ {
		bound := hi - (hi-lo)*i/max(steps-1, 1)
		if !objective.Minimizes(secondary.Kind) {
			bound = lo + (hi-lo)*i/max(steps-1, 1)
		}
		secConst := d.Model.NewVariable(cpengine.DomainValues(bound))
		kind := cpengine.LessEqual
		if !objective.Minimizes(secondary.Kind) {
			kind = cpengine.GreaterEqual
		}
		ineq, err := cpengine.NewInequality(secFD, secConst, kind)
		if err != nil {
			return nil, fmt.Errorf("pareto sweep bound %d: %w", bound, err)
		}
		d.Model.AddConstraint(ineq)

		primFD, err := d.Source.Resolve(primary.Kind)
		if err != nil {
			return nil, err
		}
		out, err := d.solveOne(ctx, primFD, objective.Minimizes(primary.Kind), p)
		if err != nil {
			return nil, err
		}
		if !out.Feasible {
			continue
		}
		for _, wo := range cfg.Objectives {
			fd, _ := d.Source.Resolve(wo.Kind)
			out.Objectives[wo.Kind] = valueAt(out.Values, fd)
		}
		results = append(results, out)
	}

	points := toParetoSolutions(results)
	var frontier []*Outcome
	for i, out := range results {
		dominated := false
		for j := range points {
			if i != j && points[j].Dominates(points[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, out)
		}
	}
	return frontier, nil
}

func toParetoSolutions(outcomes []*Outcome) []objective.ParetoSolution {
	out := make([]objective.ParetoSolution, len(outcomes))
	for i, o := range outcomes {
		out[i] = objective.ParetoSolution{Values: o.Objectives}
	}
	return out
}

// valueAt reads fd's bound value out of a solution vector returned by
// SolveOptimal, which is indexed by FDVariable.ID() across the whole
// model rather than by the subset of variables the caller cares about.
func valueAt(vals []int, fd *cpengine.FDVariable) int {
	if fd == nil || fd.ID() >= len(vals) {
		return 0
	}
	return vals[fd.ID()]
}

// clampDomain keeps a computed bound within a variable's representable
// domain-value range, so a tolerance-relaxed freeze or an
// out-of-range epsilon bound never itself becomes an unsatisfiable
// singleton domain.
func clampDomain(fd *cpengine.FDVariable, v int) int {
	if v < 1 {
		return 1
	}
	if hi := fd.Domain().MaxValue(); v > hi {
		return hi
	}
	return v
}
