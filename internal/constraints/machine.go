package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// OptionalCumulative wraps cpengine.Cumulative (or, for capacity 1,
// the equivalent disjunctive case) over a set of tasks whose presence
// on this resource is itself a decision variable. gitrdm-gokando's
// Cumulative/NoOverlap operate on unconditional interval lists, so
// optionality is compiled away here at the call site: on each
// Propagate, only tasks whose assignment boolean has already been
// bound true are included in the underlying Cumulative's interval
// set. As more assignment variables bind during search, the
// constrained set can only grow, so this remains sound: a task not
// yet known to be present is never forced into a non-overlap
// relationship it might not actually belong to.
type OptionalCumulative struct {
	starts    []*cpengine.FDVariable
	assigned  []*cpengine.FDVariable
	durations []int
	demands   []int
	capacity  int
	label     string
}

// NewOptionalCumulative validates and constructs an OptionalCumulative.
func NewOptionalCumulative(label string, starts, assigned []*cpengine.FDVariable, durations, demands []int, capacity int) (*OptionalCumulative, error) {
	n := len(starts)
	if n == 0 {
		return nil, fmt.Errorf("OptionalCumulative(%s): requires at least one task", label)
	}
	if len(assigned) != n || len(durations) != n || len(demands) != n {
		return nil, fmt.Errorf("OptionalCumulative(%s): mismatched slice lengths", label)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("OptionalCumulative(%s): capacity must be > 0", label)
	}
	return &OptionalCumulative{
		starts: starts, assigned: assigned, durations: durations, demands: demands,
		capacity: capacity, label: label,
	}, nil
}

func (c *OptionalCumulative) Variables() []*cpengine.FDVariable {
	out := make([]*cpengine.FDVariable, 0, len(c.starts)+len(c.assigned))
	out = append(out, c.starts...)
	out = append(out, c.assigned...)
	return out
}
func (c *OptionalCumulative) Type() string { return "OptionalCumulative" }
func (c *OptionalCumulative) String() string {
	return fmt.Sprintf("OptionalCumulative(%s, n=%d, capacity=%d)", c.label, len(c.starts), c.capacity)
}

func (c *OptionalCumulative) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	var starts []*cpengine.FDVariable
	var durations, demands []int
	for i, a := range c.assigned {
		aDom := solver.GetDomain(state, a.ID())
		if aDom != nil && aDom.IsSingleton() && aDom.SingletonValue() == 2 {
			starts = append(starts, c.starts[i])
			durations = append(durations, c.durations[i])
			demands = append(demands, c.demands[i])
		}
	}
	if len(starts) < 2 {
		return state, nil // nothing confirmed-concurrent to constrain yet
	}
	cum, err := cpengine.NewCumulative(starts, durations, demands, c.capacity)
	if err != nil {
		return nil, fmt.Errorf("OptionalCumulative(%s): %w", c.label, err)
	}
	return cum.Propagate(solver, state)
}

// compileMachineCapacity posts, for every machine, non-overlap (or
// cumulative, for capacity > 1) over the tasks that may run on it,
// gated by their assignment booleans.
func (c *Compiler) compileMachineCapacity() error {
	perMachine := make(map[string][]string) // machine -> task ids eligible
	for _, taskID := range c.Build.TaskList {
		task, err := c.Problem.Task(taskID)
		if err != nil {
			return err
		}
		for _, m := range task.EligibleMachines() {
			perMachine[m] = append(perMachine[m], taskID)
		}
	}

	for machineID, taskIDs := range perMachine {
		if len(taskIDs) < 2 {
			continue
		}
		machine, ok := c.Problem.MachineIndex[machineID]
		if !ok {
			continue
		}
		capacity := machine.Capacity
		if capacity <= 0 {
			capacity = 1
		}

		var starts, assigned []*cpengine.FDVariable
		var durations, demands []int
		for _, taskID := range taskIDs {
			task, _ := c.Problem.Task(taskID)
			mode, ok := task.ModeFor(machineID)
			if !ok {
				continue
			}
			tv := c.Build.Tasks[taskID]
			bv, ok := tv.AssignedM[machineID]
			if !ok {
				continue
			}
			starts = append(starts, tv.Start.Var)
			assigned = append(assigned, bv.Var)
			durations = append(durations, int(tuOf(mode.DurationMinutes)))
			demands = append(demands, 1)
		}
		if len(starts) < 2 {
			continue
		}

		oc, err := NewOptionalCumulative("machine:"+machineID, starts, assigned, durations, demands, capacity)
		if err != nil {
			return err
		}
		c.Model.AddConstraint(oc)
	}
	return nil
}
