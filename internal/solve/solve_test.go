package solve_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/scheduled/internal/constraints"
	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/objective"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/solve"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

// buildTwoMachineProblem gives the solver an actual choice to
// minimize over: two independent tasks, each eligible for either of
// two machines, so the makespan objective has room to improve by
// spreading them across machines instead of serializing them.
func buildTwoMachineProblem(t *testing.T) *problem.Problem {
	t.Helper()
	b := problem.NewBuilder()

	m1, err := entity.NewMachine("m1", "cell-1", "Lathe", 1, 1)
	require.NoError(t, err)
	m2, err := entity.NewMachine("m2", "cell-1", "Mill", 1, 1)
	require.NoError(t, err)
	b.AddMachine(*m1)
	b.AddMachine(*m2)
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1"}})
	b.AddJob(entity.Job{JobID: "j2", TaskIDs: []string{"t2"}})

	t1, err := entity.NewTask("t1", "j1", "First", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	t1m1, err := entity.NewTaskMode("t1-m1", "t1", "m1", 30)
	require.NoError(t, err)
	t1m2, err := entity.NewTaskMode("t1-m2", "t1", "m2", 30)
	require.NoError(t, err)
	t1.Modes = []entity.TaskMode{*t1m1, *t1m2}
	b.AddTask(*t1)

	t2, err := entity.NewTask("t2", "j2", "Second", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	t2m1, err := entity.NewTaskMode("t2-m1", "t2", "m1", 30)
	require.NoError(t, err)
	t2m2, err := entity.NewTaskMode("t2-m2", "t2", "m2", 30)
	require.NoError(t, err)
	t2.Modes = []entity.TaskMode{*t2m1, *t2m2}
	b.AddTask(*t2)

	p, err := b.Assemble()
	require.NoError(t, err)
	return p
}

func TestDriver_Run_Lexicographic_MinimizesMakespan(t *testing.T) {
	p := buildTwoMachineProblem(t)
	horizon := timeutil.TU(20)
	build, err := varbuild.New(p, horizon, func(string) timeutil.TU { return horizon })
	require.NoError(t, err)

	comp := constraints.New(p, build, nil)
	result, err := comp.CompileAll()
	require.NoError(t, err)

	source := &objective.VariableSource{Makespan: result.Makespan.Var}
	cfg := &objective.MultiObjectiveConfig{
		Strategy:   objective.Lexicographic,
		Objectives: []objective.WeightedObjective{{Kind: objective.MinimizeMakespan, Weight: 1, Priority: 1}},
	}
	require.NoError(t, cfg.Validate())

	driver := solve.New(build.Model, source, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcome, err := driver.Run(ctx, cfg, solve.Params{TimeLimit: 3 * time.Second})
	require.NoError(t, err)
	require.True(t, outcome.Feasible)

	// Both 30-minute tasks can run concurrently on separate machines,
	// so the optimal makespan is exactly one task's duration (2 TU at
	// the default 15-minutes-per-TU conversion), never the
	// serialized-on-one-machine bound.
	gotMakespan := outcome.Values[result.Makespan.Var.ID()]
	require.Equal(t, timeutil.DomainValue(timeutil.ToTU(30)), gotMakespan)
}

func TestDriver_Run_UnknownStrategy_Errors(t *testing.T) {
	p := buildTwoMachineProblem(t)
	horizon := timeutil.TU(20)
	build, err := varbuild.New(p, horizon, func(string) timeutil.TU { return horizon })
	require.NoError(t, err)

	comp := constraints.New(p, build, nil)
	result, err := comp.CompileAll()
	require.NoError(t, err)

	source := &objective.VariableSource{Makespan: result.Makespan.Var}
	driver := solve.New(build.Model, source, nil)

	_, err = driver.Run(context.Background(), &objective.MultiObjectiveConfig{
		Strategy:   objective.Strategy(99),
		Objectives: []objective.WeightedObjective{{Kind: objective.MinimizeMakespan, Weight: 1, Priority: 1}},
	}, solve.Params{})
	require.Error(t, err)
}
