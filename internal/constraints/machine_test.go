package constraints_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/scheduled/internal/constraints"
	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// twoIndependentTasksOneMachine builds two unrelated (no precedence)
// tasks that both can only run on m1, a capacity-1 resource, so any
// feasible schedule must keep their intervals disjoint.
func twoIndependentTasksOneMachine(t *testing.T) *problem.Problem {
	t.Helper()
	b := problem.NewBuilder()

	m, err := entity.NewMachine("m1", "cell-1", "Lathe", 1, 1)
	require.NoError(t, err)
	b.AddMachine(*m)
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1"}})
	b.AddJob(entity.Job{JobID: "j2", TaskIDs: []string{"t2"}})

	t1, err := entity.NewTask("t1", "j1", "First", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode1, err := entity.NewTaskMode("t1-m1", "t1", "m1", 30)
	require.NoError(t, err)
	t1.Modes = []entity.TaskMode{*mode1}
	b.AddTask(*t1)

	t2, err := entity.NewTask("t2", "j2", "Second", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode2, err := entity.NewTaskMode("t2-m1", "t2", "m1", 30)
	require.NoError(t, err)
	t2.Modes = []entity.TaskMode{*mode2}
	b.AddTask(*t2)

	p, err := b.Assemble()
	require.NoError(t, err)
	return p
}

// TestCompileMachineCapacity_SolverNeverOverlapsTwoTasksOnOneResource
// drives the real solver over two independent tasks both eligible
// only for a capacity-1 machine, proving OptionalCumulative's
// gated reconstruction of cpengine.Cumulative actually forbids
// overlapping intervals once both assignment booleans resolve true.
func TestCompileMachineCapacity_SolverNeverOverlapsTwoTasksOnOneResource(t *testing.T) {
	p := twoIndependentTasksOneMachine(t)
	horizon := timeutil.TU(40)
	build, err := varbuild.New(p, horizon, func(string) timeutil.TU { return horizon })
	require.NoError(t, err)

	comp := constraints.New(p, build, nil)
	_, err = comp.CompileAll()
	require.NoError(t, err)

	solver := cpengine.NewSolver(build.Model)
	solutions, err := solver.Solve(context.Background(), 5)
	require.NoError(t, err)
	require.NotEmpty(t, solutions, "expected at least one feasible solution")

	t1 := build.Tasks["t1"]
	t2 := build.Tasks["t2"]
	for _, sol := range solutions {
		start1, end1 := sol[t1.Start.Var.ID()], sol[t1.End.Var.ID()]
		start2, end2 := sol[t2.Start.Var.ID()], sol[t2.End.Var.ID()]
		overlap := start1 < end2 && start2 < end1
		require.False(t, overlap, "t1 [%d,%d) and t2 [%d,%d) must not overlap on a capacity-1 machine", start1, end1, start2, end2)
	}
}
