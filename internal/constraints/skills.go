package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

// efficiencyScale converts SkillLevel.Multiplier()'s float scale (0.5,
// 0.75, 1.0, 1.25) into integer LinearSum coefficients. A task's raw
// efficiency_T value minus the sum of its coefficients (the
// all-unassigned baseline, since each boolean is 1 or 2), divided by
// efficiencyScale, recovers the multiplier sum over assigned
// operators; callers needing a per-task average also divide by the
// number of assigned operators.
const efficiencyScale = 100

// compileSkills posts, for every task with operator assignment
// variables: an operator-headcount Count constraint bounding the
// number of assigned operators within [MinOperators, MaxOperators];
// per-mandatory-skill coverage Count constraints restricted to
// operators qualified at or above the required level; operator
// no-overlap via the same optional-interval-filtering strategy
// OptionalCumulative already provides for machines (§4.5.4); and a
// per-task efficiency_T LinearSum whose coefficients are each
// qualified operator's skill multiplier, scaled to integers.
func (c *Compiler) compileSkills() (map[string]*cpengine.FDVariable, error) {
	efficiency := make(map[string]*cpengine.FDVariable)

	type opInterval struct {
		starts, assigned []*cpengine.FDVariable
		durations        []int
	}
	perOperator := make(map[string]*opInterval)

	for _, taskID := range c.Build.TaskList {
		task, err := c.Problem.Task(taskID)
		if err != nil {
			return nil, err
		}
		tv := c.Build.Tasks[taskID]
		if len(tv.AssignedO) == 0 {
			continue
		}

		opVars := make([]*cpengine.FDVariable, 0, len(tv.AssignedO))
		effVars := make([]*cpengine.FDVariable, 0, len(tv.AssignedO))
		effCoeffs := make([]int, 0, len(tv.AssignedO))
		durTU := int(tuOf(task.MinDurationMinutes()))

		for opID, bv := range tv.AssignedO {
			opVars = append(opVars, bv.Var)

			entry := perOperator[opID]
			if entry == nil {
				entry = &opInterval{}
				perOperator[opID] = entry
			}
			entry.starts = append(entry.starts, tv.Start.Var)
			entry.assigned = append(entry.assigned, bv.Var)
			entry.durations = append(entry.durations, durTU)

			op := c.Problem.OperatorIndex[opID]
			effVars = append(effVars, bv.Var)
			effCoeffs = append(effCoeffs, operatorWeight(op, taskID, c.Problem))
		}

		countVar := c.Model.IntVar(task.MinOperators+1, task.MaxOperators+1, "opcount_"+taskID)
		count, err := cpengine.NewCount(c.Model, opVars, 2, countVar)
		if err != nil {
			return nil, fmt.Errorf("operator headcount for task %s: %w", taskID, err)
		}
		c.Model.AddConstraint(count)

		for _, req := range c.Problem.TaskSkillReqIndex[taskID] {
			if !req.IsMandatory {
				continue
			}
			qualified := qualifiedOperatorVars(c.Problem, tv, req)
			if len(qualified) == 0 {
				continue
			}
			needed := req.OperatorsNeeded
			if needed < 1 {
				needed = 1
			}
			skillCountVar := c.Model.IntVar(needed+1, len(qualified)+1, "skillcount_"+taskID+"_"+req.SkillID)
			skillCount, err := cpengine.NewCount(c.Model, qualified, 2, skillCountVar)
			if err != nil {
				return nil, fmt.Errorf("skill coverage %s/%s: %w", taskID, req.SkillID, err)
			}
			c.Model.AddConstraint(skillCount)
		}

		if len(effVars) > 0 {
			maxEff := 0
			for _, coeff := range effCoeffs {
				maxEff += coeff
			}
			effVar := c.Model.IntVar(maxEff, 2*maxEff, "efficiency_"+taskID)
			sum, err := cpengine.NewLinearSum(effVars, effCoeffs, effVar)
			if err != nil {
				return nil, fmt.Errorf("efficiency for task %s: %w", taskID, err)
			}
			c.Model.AddConstraint(sum)
			efficiency[taskID] = effVar
		}
	}

	for opID, entry := range perOperator {
		if len(entry.starts) < 2 {
			continue
		}
		demands := make([]int, len(entry.starts))
		for i := range demands {
			demands[i] = 1
		}
		oc, err := NewOptionalCumulative("operator:"+opID, entry.starts, entry.assigned, entry.durations, demands, 1)
		if err != nil {
			return nil, err
		}
		c.Model.AddConstraint(oc)
	}

	return efficiency, nil
}

// qualifiedOperatorVars returns the op_assigned FDVariables, restricted
// to operators qualified in req.SkillID at or above req.RequiredLevel,
// for every operator this task has an assignment variable for.
func qualifiedOperatorVars(p *problem.Problem, tv *varbuild.TaskVars, req entity.TaskSkillRequirement) []*cpengine.FDVariable {
	var vars []*cpengine.FDVariable
	for opID, bv := range tv.AssignedO {
		op, ok := p.OperatorIndex[opID]
		if !ok {
			continue
		}
		if op.HasSkillAtLeast(req.SkillID, req.RequiredLevel) {
			vars = append(vars, bv.Var)
		}
	}
	return vars
}

// operatorWeight returns the integer LinearSum coefficient for
// assigning op to task: the plain average, across every skill the
// task mandatorily requires and op holds, of op's level multiplier
// scaled by efficiencyScale (requirement weights are not applied).
// An operator meeting no mandatory requirement (or a
// task with none) contributes a flat efficiencyScale (multiplier 1.0).
func operatorWeight(op *entity.Operator, taskID string, p *problem.Problem) int {
	if op == nil {
		return efficiencyScale
	}
	reqs := p.TaskSkillReqIndex[taskID]
	total := 0
	count := 0
	for _, req := range reqs {
		if !req.IsMandatory {
			continue
		}
		level, ok := op.SkillLevelFor(req.SkillID)
		if !ok {
			continue
		}
		total += int(level.Multiplier() * efficiencyScale)
		count++
	}
	if count == 0 {
		return efficiencyScale
	}
	return total / count
}
