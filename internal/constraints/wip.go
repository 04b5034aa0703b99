package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// compileWIPLimits posts, for every cell whose effective WIP limit is
// below the "unlimited" sentinel, a cumulative cap over every task
// interval eligible in that cell (grounded on cpengine.NewCumulative,
// same construction as §4.5.5's capacity constraint but keyed off the
// WIP limit rather than raw machine capacity). It also builds a
// per-cell "load" variable (a LinearSum over the cell's assignment
// booleans; its raw value is the number of those booleans plus the
// number of them that are true, so a cell may end up with no task)
// and a MinMax pair over those loads, giving the objective builder a
// max_cell_wip - min_cell_wip flow-imbalance signal.
func (c *Compiler) compileWIPLimits() (*wipResultPublic, error) {
	var loads []*cpengine.FDVariable

	for _, cell := range c.Problem.WorkCells {
		machineSet := make(map[string]bool, len(cell.Machines))
		for _, m := range cell.Machines {
			machineSet[m] = true
		}

		var starts, assigned []*cpengine.FDVariable
		var durations, demands []int
		for _, taskID := range c.Build.TaskList {
			task, err := c.Problem.Task(taskID)
			if err != nil {
				return nil, err
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

		if !cell.Unlimited() && len(starts) >= 2 {
			oc, err := NewOptionalCumulative("wip:"+cell.CellID, starts, assigned, durations, demands, cell.EffectiveWIPLimit())
			if err != nil {
				return nil, err
			}
			c.Model.AddConstraint(oc)
		}

		if len(assigned) == 0 {
			continue
		}
		coeffs := make([]int, len(assigned))
		for i := range coeffs {
			coeffs[i] = 1
		}
		load := c.Model.IntVar(len(assigned), 2*len(assigned), "load_"+cell.CellID)
		sum, err := cpengine.NewLinearSum(assigned, coeffs, load)
		if err != nil {
			return nil, fmt.Errorf("cell load for %s: %w", cell.CellID, err)
		}
		c.Model.AddConstraint(sum)
		loads = append(loads, load)
	}

	result := &wipResultPublic{}
	if len(loads) == 0 {
		return result, nil
	}

	maxVar := c.Model.IntVar(1, c.maxPossibleLoad(loads), "cell_wip_max")
	maxC, err := cpengine.NewMax(loads, maxVar)
	if err != nil {
		return nil, fmt.Errorf("cell wip max: %w", err)
	}
	c.Model.AddConstraint(maxC)

	minVar := c.Model.IntVar(1, c.maxPossibleLoad(loads), "cell_wip_min")
	minC, err := cpengine.NewMin(loads, minVar)
	if err != nil {
		return nil, fmt.Errorf("cell wip min: %w", err)
	}
	c.Model.AddConstraint(minC)

	result.max = maxVar
	result.min = minVar
	return result, nil
}

func (c *Compiler) maxPossibleLoad(loads []*cpengine.FDVariable) int {
	max := 1
	for _, v := range loads {
		if v.Domain().MaxValue() > max {
			max = v.Domain().MaxValue()
		}
	}
	return max
}

// wipResultPublic carries the raw max/min load FDVariables out to
// CompileAll, which passes them through to Result unchanged.
type wipResultPublic struct {
	max, min *cpengine.FDVariable
}
