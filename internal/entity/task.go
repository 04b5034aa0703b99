package entity

import "github.com/gitrdm/scheduled/internal/scherr"

// EfficiencyCurve describes how an operator's skill multiplier combines
// across the duration of a task.
type EfficiencyCurve int

const (
	EfficiencyLinear EfficiencyCurve = iota
	EfficiencyDiminishing
	EfficiencyConstant
)

func (c EfficiencyCurve) Valid() bool {
	return c == EfficiencyLinear || c == EfficiencyDiminishing || c == EfficiencyConstant
}

// Task is one unit of work within a job (or, in pattern mode, within a
// pattern, where TaskID is a pattern-task ID rather than a fully expanded
// instance-task ID).
type Task struct {
	TaskID                 string
	JobID                  string
	Name                   string
	DepartmentID           string
	IsUnattended           bool
	IsSetup                bool
	Modes                  []TaskMode
	PrecedenceSuccessors   []string
	PrecedencePredecessors []string
	MinOperators           int
	MaxOperators           int
	EfficiencyCurve        EfficiencyCurve
	SequenceID             string
}

// NewTask validates and constructs a Task. Modes may be empty at
// construction time to support incremental builders; final assembly
// validation (Problem.Validate) rejects tasks with zero modes.
func NewTask(taskID, jobID, name string, minOperators, maxOperators int, curve EfficiencyCurve) (*Task, error) {
	if taskID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "task task_id must not be empty")
	}
	if jobID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "task job_id must not be empty", taskID)
	}
	if minOperators < 1 {
		return nil, scherr.New(scherr.InvalidEntity, "task min_operators must be >= 1", taskID)
	}
	if maxOperators < minOperators {
		return nil, scherr.New(scherr.InvalidEntity, "task max_operators must be >= min_operators", taskID)
	}
	if !curve.Valid() {
		return nil, scherr.New(scherr.InvalidEntity, "task efficiency_curve is not a known enum value", taskID)
	}
	return &Task{
		TaskID:          taskID,
		JobID:           jobID,
		Name:            name,
		MinOperators:    minOperators,
		MaxOperators:    maxOperators,
		EfficiencyCurve: curve,
	}, nil
}

// EligibleMachines returns the set of machine resource IDs this task can
// run on, derived from its modes.
func (t *Task) EligibleMachines() []string {
	seen := make(map[string]bool, len(t.Modes))
	out := make([]string, 0, len(t.Modes))
	for _, m := range t.Modes {
		if !seen[m.MachineResourceID] {
			seen[m.MachineResourceID] = true
			out = append(out, m.MachineResourceID)
		}
	}
	return out
}

// ModeFor returns the mode targeting the given machine, if any.
func (t *Task) ModeFor(machineResourceID string) (TaskMode, bool) {
	for _, m := range t.Modes {
		if m.MachineResourceID == machineResourceID {
			return m, true
		}
	}
	return TaskMode{}, false
}

// MinDurationMinutes returns the shortest duration across this task's
// modes, or 0 if Modes is empty.
func (t *Task) MinDurationMinutes() int {
	min := -1
	for _, m := range t.Modes {
		if min < 0 || m.DurationMinutes < min {
			min = m.DurationMinutes
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// MaxDurationMinutes returns the longest duration across this task's
// modes.
func (t *Task) MaxDurationMinutes() int {
	max := 0
	for _, m := range t.Modes {
		if m.DurationMinutes > max {
			max = m.DurationMinutes
		}
	}
	return max
}
