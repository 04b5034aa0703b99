package constraints

import (
	"fmt"
	"sort"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/entity"
)

// compileSymmetryBreaking posts a chain of LexLessEq constraints over
// adjacent same-pattern instance pairs, ordered by InstanceID: the
// vector of start_T variables for instance i (one entry per pattern
// task, in pattern-task order) must be lexicographically <= instance
// i+1's vector. Interchangeable instances of the same pattern produce
// otherwise-identical search trees differing only in which instance
// gets the earlier slots; this collapses that symmetry class the way
// Lexicographic is intended to (the engine carries it as a reserved,
// previously-unused global constraint). Only meaningful in pattern
// mode with >=2 instances of a given pattern; a no-op otherwise.
func (c *Compiler) compileSymmetryBreaking() error {
	if !c.Problem.IsPatternMode {
		return nil
	}

	byPattern := make(map[string][]entity.Instance)
	for _, inst := range c.Problem.Instances {
		byPattern[inst.PatternID] = append(byPattern[inst.PatternID], inst)
	}

	for patternID, instances := range byPattern {
		if len(instances) < 2 {
			continue
		}
		sort.Slice(instances, func(i, j int) bool { return instances[i].InstanceID < instances[j].InstanceID })

		var pattern *entity.Pattern
		for i := range c.Problem.Patterns {
			if c.Problem.Patterns[i].PatternID == patternID {
				pattern = &c.Problem.Patterns[i]
				break
			}
		}
		if pattern == nil || len(pattern.PatternTasks) == 0 {
			continue
		}
		patternTaskIDs := make([]string, len(pattern.PatternTasks))
		for i, pt := range pattern.PatternTasks {
			patternTaskIDs[i] = pt.TaskID
		}

		for i := 0; i+1 < len(instances); i++ {
			starts1, assigned1, ok1 := c.instanceVectors(instances[i].InstanceID, patternTaskIDs)
			starts2, assigned2, ok2 := c.instanceVectors(instances[i+1].InstanceID, patternTaskIDs)
			if !ok1 || !ok2 {
				continue
			}

			lex1, err := cpengine.NewLexLessEq(starts1, starts2)
			if err != nil {
				return fmt.Errorf("symmetry break (starts) %s/%s: %w", instances[i].InstanceID, instances[i+1].InstanceID, err)
			}
			c.Model.AddConstraint(lex1)

			if len(assigned1) == len(assigned2) && len(assigned1) > 0 {
				lex2, err := cpengine.NewLexLessEq(assigned1, assigned2)
				if err != nil {
					return fmt.Errorf("symmetry break (operators) %s/%s: %w", instances[i].InstanceID, instances[i+1].InstanceID, err)
				}
				c.Model.AddConstraint(lex2)
			}
		}
	}
	return nil
}

// instanceVectors returns the expanded-task start variables for one
// instance (in pattern-task order) plus a flattened, name-sorted
// vector of its operator-assignment booleans, so Lex comparisons are
// applied over a stable ordering regardless of map iteration order.
func (c *Compiler) instanceVectors(instanceID string, patternTaskIDs []string) ([]*cpengine.FDVariable, []*cpengine.FDVariable, bool) {
	starts := make([]*cpengine.FDVariable, 0, len(patternTaskIDs))
	var assigned []*cpengine.FDVariable

	for _, ptID := range patternTaskIDs {
		taskID := entity.InstanceTaskID(instanceID, ptID)
		tv, ok := c.Build.Tasks[taskID]
		if !ok {
			return nil, nil, false
		}
		starts = append(starts, tv.Start.Var)

		opIDs := make([]string, 0, len(tv.AssignedO))
		for opID := range tv.AssignedO {
			opIDs = append(opIDs, opID)
		}
		sort.Strings(opIDs)
		for _, opID := range opIDs {
			assigned = append(assigned, tv.AssignedO[opID].Var)
		}
	}
	return starts, assigned, true
}
