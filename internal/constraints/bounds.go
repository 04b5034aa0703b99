package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

// compileRedundantBounds posts makespan >= end_T for every task (via
// Inequality) and a single constant lower bound makespan >=
// ceil(total_min_work / total_machine_capacity), derived outside the
// solver from the already-known minimum mode durations and the summed
// machine capacity (a capacity of 0 counts as 1, as in
// compileMachineCapacity). The per-task bounds are what tie makespan
// to the task ends; the aggregate bound is redundant, posted so the
// engine's bounds propagation can prune the search space before any
// task is bound.
func (c *Compiler) compileRedundantBounds() (varbuild.TUVar, error) {
	makespanVar := c.Model.IntVar(1, timeutil.DomainValue(c.Build.Horizon), "makespan")

	totalMinWork := 0
	for _, taskID := range c.Build.TaskList {
		task, err := c.Problem.Task(taskID)
		if err != nil {
			return varbuild.TUVar{}, err
		}
		tv := c.Build.Tasks[taskID]
		ineq, err := cpengine.NewInequality(makespanVar, tv.End.Var, cpengine.GreaterEqual)
		if err != nil {
			return varbuild.TUVar{}, fmt.Errorf("makespan bound for task %s: %w", taskID, err)
		}
		c.Model.AddConstraint(ineq)
		totalMinWork += task.MinDurationMinutes()
	}

	totalCapacity := 0
	for _, m := range c.Problem.Machines {
		if m.Capacity > 0 {
			totalCapacity += m.Capacity
		} else {
			totalCapacity++
		}
	}
	if totalCapacity > 0 {
		lowerMinutes := totalMinWork / totalCapacity
		lowerTU := timeutil.ToTU(lowerMinutes)
		if lowerTU > 0 {
			lowerDV := timeutil.DomainValue(lowerTU)
			if lowerDV <= timeutil.DomainValue(c.Build.Horizon) {
				lowerConst := c.Model.NewVariable(cpengine.DomainValues(lowerDV))
				ineq, err := cpengine.NewInequality(makespanVar, lowerConst, cpengine.GreaterEqual)
				if err != nil {
					return varbuild.TUVar{}, fmt.Errorf("makespan aggregate lower bound: %w", err)
				}
				c.Model.AddConstraint(ineq)
			}
		}
	}

	return varbuild.TUVar{Var: makespanVar}, nil
}
