package varbuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

func TestNew_BuildsStartDurationEndAndAssignmentVars(t *testing.T) {
	machine, err := entity.NewMachine("m1", "cell-1", "Lathe", 1, 5)
	require.NoError(t, err)

	task, err := entity.NewTask("t1", "j1", "Turn", 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode, err := entity.NewTaskMode("t1-m1", "t1", "m1", 30)
	require.NoError(t, err)
	task.Modes = []entity.TaskMode{*mode}

	b := problem.NewBuilder()
	b.AddMachine(*machine)
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1"}})
	b.AddTask(*task)
	p, err := b.Assemble()
	require.NoError(t, err)

	horizon := timeutil.TU(100)
	build, err := varbuild.New(p, horizon, func(string) timeutil.TU { return horizon })
	require.NoError(t, err)

	tv, ok := build.Tasks["t1"]
	require.True(t, ok)
	assert.True(t, tv.Duration.Var.Domain().Count() > 0)
	assert.Contains(t, tv.AssignedM, "m1")
}

func TestLatestStart_ClipsIntoHorizon(t *testing.T) {
	got := varbuild.LatestStart(timeutil.TU(10), timeutil.TU(4), timeutil.TU(50), timeutil.TU(2))
	assert.Equal(t, timeutil.TU(6), got)

	clipped := varbuild.LatestStart(timeutil.TU(1), timeutil.TU(20), timeutil.TU(50), timeutil.TU(2))
	assert.Equal(t, timeutil.TU(0), clipped)
}
