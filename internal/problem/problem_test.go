package problem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/problem"
)

func mustMachine(t *testing.T, id string) entity.Machine {
	t.Helper()
	m, err := entity.NewMachine(id, "cell-1", id, 1, 10)
	require.NoError(t, err)
	return *m
}

func mustTask(t *testing.T, id, jobID, machineID string) entity.Task {
	t.Helper()
	tk, err := entity.NewTask(id, jobID, id, 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode, err := entity.NewTaskMode(id+"-mode", id, machineID, 30)
	require.NoError(t, err)
	tk.Modes = []entity.TaskMode{*mode}
	return *tk
}

func TestAssemble_UniqueJobMode(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1"))
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1", "t2"}})
	b.AddTask(mustTask(t, "t1", "j1", "m1"))
	b.AddTask(mustTask(t, "t2", "j1", "m1"))
	b.AddPrecedence(entity.Precedence{PredTaskID: "t1", SuccTaskID: "t2"})

	p, err := b.Assemble()
	require.NoError(t, err)

	assert.Len(t, p.Tasks, 2)
	assert.Contains(t, p.TaskIndex["t1"].PrecedenceSuccessors, "t2")
	assert.Contains(t, p.TaskIndex["t2"].PrecedencePredecessors, "t1")
}

func TestValidate_DetectsDanglingMachine(t *testing.T) {
	b := problem.NewBuilder()
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1"}})
	b.AddTask(mustTask(t, "t1", "j1", "ghost-machine"))

	_, err := b.Assemble()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown machine")
}

func TestValidate_DetectsCycle(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1"))
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"t1", "t2"}})
	b.AddTask(mustTask(t, "t1", "j1", "m1"))
	b.AddTask(mustTask(t, "t2", "j1", "m1"))
	b.AddPrecedence(entity.Precedence{PredTaskID: "t1", SuccTaskID: "t2"})
	b.AddPrecedence(entity.Precedence{PredTaskID: "t2", SuccTaskID: "t1"})

	_, err := b.Assemble()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestAssemble_PatternModeExpandsInstances(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1"))

	pt1 := mustTask(t, "cut", "pattern-unused", "m1")
	pt2 := mustTask(t, "drill", "pattern-unused", "m1")
	pat, err := entity.NewPattern("widget", "Widget pattern")
	require.NoError(t, err)
	pat.PatternTasks = []entity.Task{pt1, pt2}
	pat.Precedences = []entity.Precedence{{PredTaskID: "cut", SuccTaskID: "drill"}}
	b.AddPattern(*pat)

	inst, err := entity.NewInstance("order-42", "widget", "first batch", nil)
	require.NoError(t, err)
	b.AddInstance(*inst)

	p, err := b.Assemble()
	require.NoError(t, err)

	require.Contains(t, p.TaskIndex, "order-42_cut")
	require.Contains(t, p.TaskIndex, "order-42_drill")
	assert.Contains(t, p.TaskIndex["order-42_cut"].PrecedenceSuccessors, "order-42_drill")
}
