package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

type dueDateResult struct {
	lateness         map[string]varbuild.TUVar
	completion       map[string]varbuild.TUVar
	totalLateness    *cpengine.FDVariable
	numLatenessTerms int
	maxLateness      varbuild.TUVar
}

// compileDueDates posts, for every job/instance with a due date:
// completion_J := max(end_T for T in J), grounded on cpengine.MinMax's
// max mode; lateness_J := max(0, completion_J - due_tu), computed as
// max(completion_J, due_tu) - due_tu via a second Max plus an
// Arithmetic offset (equivalent to, and simpler than, composing
// Absolute's signed offset-encoding for this always-nonnegative
// case); total_lateness and max_lateness aggregate across jobs via
// LinearSum and Max respectively. When EnableDueDateHardConstraint is
// set, completion_J <= due_tu is also posted directly.
func (c *Compiler) compileDueDates() (*dueDateResult, error) {
	result := &dueDateResult{
		lateness:   make(map[string]varbuild.TUVar),
		completion: make(map[string]varbuild.TUVar),
	}

	var latenessVars []*cpengine.FDVariable
	for _, job := range c.Problem.Jobs {
		if job.DueDate == nil || len(job.TaskIDs) == 0 {
			continue
		}
		var ends []*cpengine.FDVariable
		for _, taskID := range job.TaskIDs {
			tv, ok := c.Build.Tasks[taskID]
			if !ok {
				continue
			}
			ends = append(ends, tv.End.Var)
		}
		if len(ends) == 0 {
			continue
		}

		completionVar := c.Model.IntVar(1, timeutil.DomainValue(c.Build.Horizon), "completion_"+job.JobID)
		maxEnd, err := cpengine.NewMax(ends, completionVar)
		if err != nil {
			return nil, fmt.Errorf("completion for job %s: %w", job.JobID, err)
		}
		c.Model.AddConstraint(maxEnd)

		dueTU := timeutil.ClampDueTU(timeutil.FromTime(*job.DueDate))
		dueDV := timeutil.DomainValue(dueTU)
		dueConst := c.Model.NewVariable(cpengine.DomainValues(dueDV))

		if c.EnableDueDateHardConstraint {
			ineq, err := cpengine.NewInequality(completionVar, dueConst, cpengine.LessEqual)
			if err != nil {
				return nil, fmt.Errorf("hard due date for job %s: %w", job.JobID, err)
			}
			c.Model.AddConstraint(ineq)
		}

		laterOf := c.Model.IntVar(1, timeutil.DomainValue(c.Build.Horizon), "later_of_due_"+job.JobID)
		maxLate, err := cpengine.NewMax([]*cpengine.FDVariable{completionVar, dueConst}, laterOf)
		if err != nil {
			return nil, fmt.Errorf("completion-vs-due max for job %s: %w", job.JobID, err)
		}
		c.Model.AddConstraint(maxLate)

		latenessVar := c.Model.IntVar(1, timeutil.DomainValue(c.Build.Horizon), "lateness_"+job.JobID)
		arith, err := cpengine.NewArithmetic(laterOf, latenessVar, 1-dueDV)
		if err != nil {
			return nil, fmt.Errorf("lateness for job %s: %w", job.JobID, err)
		}
		c.Model.AddConstraint(arith)

		result.completion[job.JobID] = varbuild.TUVar{Var: completionVar}
		result.lateness[job.JobID] = varbuild.TUVar{Var: latenessVar}
		latenessVars = append(latenessVars, latenessVar)
	}

	if len(latenessVars) == 0 {
		return result, nil
	}

	coeffs := make([]int, len(latenessVars))
	for i := range coeffs {
		coeffs[i] = 1
	}
	maxPossible := 0
	for _, v := range latenessVars {
		maxPossible += v.Domain().MaxValue()
	}
	totalVar := c.Model.IntVar(1, maxPossible, "total_lateness")
	sum, err := cpengine.NewLinearSum(latenessVars, coeffs, totalVar)
	if err != nil {
		return nil, fmt.Errorf("total lateness: %w", err)
	}
	c.Model.AddConstraint(sum)
	result.totalLateness = totalVar
	result.numLatenessTerms = len(latenessVars)

	maxLatenessVar := c.Model.IntVar(1, timeutil.DomainValue(c.Build.Horizon), "max_lateness")
	maxC, err := cpengine.NewMax(latenessVars, maxLatenessVar)
	if err != nil {
		return nil, fmt.Errorf("max lateness: %w", err)
	}
	c.Model.AddConstraint(maxC)
	result.maxLateness = varbuild.TUVar{Var: maxLatenessVar}

	return result, nil
}
