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

// twoTaskChain builds a two-task, single-machine problem where t2
// must follow t1, leaving enough horizon slack that both orderings
// would otherwise be reachable by search.
func twoTaskChain(t *testing.T) *problem.Problem {
	t.Helper()
	b := problem.NewBuilder()

	m, err := entity.NewMachine("m1", "cell-1", "Lathe", 1, 5)
	require.NoError(t, err)
	b.AddMachine(*m)
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1", "t2"}})

	t1, err := entity.NewTask("t1", "j1", "First", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode1, err := entity.NewTaskMode("t1-m1", "t1", "m1", 30)
	require.NoError(t, err)
	t1.Modes = []entity.TaskMode{*mode1}
	b.AddTask(*t1)

	t2, err := entity.NewTask("t2", "j1", "Second", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode2, err := entity.NewTaskMode("t2-m1", "t2", "m1", 30)
	require.NoError(t, err)
	t2.Modes = []entity.TaskMode{*mode2}
	b.AddTask(*t2)

	prec, err := entity.NewPrecedence("t1", "t2")
	require.NoError(t, err)
	b.AddPrecedence(*prec)

	p, err := b.Assemble()
	require.NoError(t, err)
	return p
}

// TestCompilePrecedence_SolverNeverPlacesSuccessorBeforePredecessor
// drives the real cpengine solver (not a hand-set domain) over a
// precedence-linked pair and checks every returned solution vector
// honors start_t2 >= end_t1, proving compilePrecedence's
// cpengine.Inequality actually propagates.
func TestCompilePrecedence_SolverNeverPlacesSuccessorBeforePredecessor(t *testing.T) {
	p := twoTaskChain(t)
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
		end1 := sol[t1.End.Var.ID()]
		start2 := sol[t2.Start.Var.ID()]
		require.GreaterOrEqual(t, start2, end1, "t2 must not start before t1 ends")
	}
}
