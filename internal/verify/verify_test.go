package verify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/extract"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/verify"
)

func mustMachine(t *testing.T, id string, capacity int) entity.Machine {
	t.Helper()
	m, err := entity.NewMachine(id, "cell-1", id, capacity, 10)
	require.NoError(t, err)
	return *m
}

func mustTask(t *testing.T, id, jobID, machineID string, durationMinutes int) entity.Task {
	t.Helper()
	tk, err := entity.NewTask(id, jobID, id, 1, 1, entity.EfficiencyLinear)
	require.NoError(t, err)
	mode, err := entity.NewTaskMode(id+"-mode", id, machineID, durationMinutes)
	require.NoError(t, err)
	tk.Modes = []entity.TaskMode{*mode}
	return *tk
}

func TestCheckPrecedence_DetectsViolation(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1", 1))
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"a", "b"}})
	b.AddTask(mustTask(t, "a", "j1", "m1", 30))
	b.AddTask(mustTask(t, "b", "j1", "m1", 30))
	b.AddPrecedence(entity.Precedence{PredTaskID: "a", SuccTaskID: "b"})
	p, err := b.Assemble()
	require.NoError(t, err)

	sched := &extract.Schedule{Entries: []extract.ScheduleEntry{
		{TaskID: "a", Start: 0, End: 2, MachineID: "m1"},
		{TaskID: "b", Start: 1, End: 3, MachineID: "m1"}, // starts before a ends
	}}

	violations := verify.CheckPrecedence(p, sched)
	assert.NotEmpty(t, violations)
}

func TestCheckMachineCapacity_DetectsOverlap(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1", 1))
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"a", "b"}})
	b.AddTask(mustTask(t, "a", "j1", "m1", 30))
	b.AddTask(mustTask(t, "b", "j1", "m1", 30))
	p, err := b.Assemble()
	require.NoError(t, err)

	sched := &extract.Schedule{Entries: []extract.ScheduleEntry{
		{TaskID: "a", Start: 0, End: 4, MachineID: "m1"},
		{TaskID: "b", Start: 2, End: 6, MachineID: "m1"},
	}}

	violations := verify.CheckMachineCapacity(p, sched)
	assert.NotEmpty(t, violations)
}

func TestCheckMachineCapacity_AllowsNonOverlapping(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1", 1))
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"a", "b"}})
	b.AddTask(mustTask(t, "a", "j1", "m1", 30))
	b.AddTask(mustTask(t, "b", "j1", "m1", 30))
	p, err := b.Assemble()
	require.NoError(t, err)

	sched := &extract.Schedule{Entries: []extract.ScheduleEntry{
		{TaskID: "a", Start: 0, End: 2, MachineID: "m1"},
		{TaskID: "b", Start: 2, End: 4, MachineID: "m1"},
	}}

	assert.Empty(t, verify.CheckMachineCapacity(p, sched))
}

func TestCheckAll_NoViolationsOnCleanSchedule(t *testing.T) {
	b := problem.NewBuilder()
	b.AddMachine(mustMachine(t, "m1", 1))
	b.AddJob(entity.Job{JobID: "j1", TaskIDs: []string{"a"}})
	b.AddTask(mustTask(t, "a", "j1", "m1", 30))
	p, err := b.Assemble()
	require.NoError(t, err)

	sched := &extract.Schedule{Entries: []extract.ScheduleEntry{
		{TaskID: "a", Start: 0, End: 2, MachineID: "m1"},
	}}

	assert.Empty(t, verify.CheckAll(p, sched))
}
