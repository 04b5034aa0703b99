package extract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/scheduled/internal/constraints"
	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/extract"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

func buildSingleTaskProblem(t *testing.T) *problem.Problem {
	t.Helper()
	b := problem.NewBuilder()
	m, err := entity.NewMachine("m1", "cell-1", "m1", 1, 10)
	require.NoError(t, err)
	b.AddMachine(*m)
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1"}})

	tk, err := entity.NewTask("t1", "j1", "t1", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode, err := entity.NewTaskMode("t1-mode", "t1", "m1", 30)
	require.NoError(t, err)
	tk.Modes = []entity.TaskMode{*mode}
	b.AddTask(*tk)

	p, err := b.Assemble()
	require.NoError(t, err)
	return p
}

func TestExtract_OrdersAndDecodesOneTask(t *testing.T) {
	p := buildSingleTaskProblem(t)
	build, err := varbuild.New(p, timeutil.TU(96), func(string) timeutil.TU { return timeutil.TU(96) })
	require.NoError(t, err)

	comp := constraints.New(p, build, nil)
	result, err := comp.CompileAll()
	require.NoError(t, err)

	tv := build.Tasks["t1"]
	values := make([]int, build.Model.VariableCount())
	for _, v := range build.Model.Variables() {
		values[v.ID()] = v.Domain().Min()
	}
	values[tv.Start.Var.ID()] = timeutil.DomainValue(timeutil.TU(4))
	values[tv.End.Var.ID()] = timeutil.DomainValue(timeutil.TU(6))
	values[tv.AssignedM["m1"].Var.ID()] = 2

	sched, err := extract.Extract(p, build, result, comp.SetupBools(), values)
	require.NoError(t, err)
	require.Len(t, sched.Entries, 1)

	entry := sched.Entries[0]
	require.Equal(t, "t1", entry.TaskID)
	require.Equal(t, timeutil.TU(4), entry.Start)
	require.Equal(t, timeutil.TU(6), entry.End)
	require.Equal(t, "m1", entry.MachineID)
}
