package constraints

import cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"

// compileWorkCellCapacity posts a cumulative constraint over every
// cell whose declared capacity is smaller than its machine count,
// covering every task eligible on any machine in the cell.
func (c *Compiler) compileWorkCellCapacity() error {
	for _, cell := range c.Problem.WorkCells {
		if cell.Capacity >= len(cell.Machines) {
			continue
		}
		machineSet := make(map[string]bool, len(cell.Machines))
		for _, m := range cell.Machines {
			machineSet[m] = true
		}

		var starts, assigned []*cpengine.FDVariable
		var durations, demands []int
		for _, taskID := range c.Build.TaskList {
			task, err := c.Problem.Task(taskID)
			if err != nil {
				return err
			}
			tv := c.Build.Tasks[taskID]
			for _, mode := range task.Modes {
				if !machineSet[mode.MachineResourceID] {
					continue
				}
				bv, ok := tv.AssignedM[mode.MachineResourceID]
				if !ok {
					continue
				}
				starts = append(starts, tv.Start.Var)
				assigned = append(assigned, bv.Var)
				durations = append(durations, int(tuOf(mode.DurationMinutes)))
				demands = append(demands, 1)
			}
		}
		if len(starts) < 2 {
			continue
		}

		oc, err := NewOptionalCumulative("cell:"+cell.CellID, starts, assigned, durations, demands, cell.Capacity)
		if err != nil {
			return err
		}
		c.Model.AddConstraint(oc)
	}
	return nil
}
