package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// ModeImpliesDuration links an assignment boolean to the fixed
// duration of the mode it selects: assigned=true forces
// duration == modeDuration; duration excluding modeDuration forces
// assigned=false. Grounded structurally on cumulative.go's
// compulsory-part pruning style: a bound boolean prunes a sibling
// domain to a singleton, and a sibling domain that excludes a value
// prunes the boolean.
type ModeImpliesDuration struct {
	assigned     *cpengine.FDVariable
	duration     *cpengine.FDVariable
	modeDuration timeutil.TU
}

// NewModeImpliesDuration validates and constructs a ModeImpliesDuration.
func NewModeImpliesDuration(assigned, duration *cpengine.FDVariable, modeDuration timeutil.TU) (*ModeImpliesDuration, error) {
	if assigned == nil || duration == nil {
		return nil, fmt.Errorf("ModeImpliesDuration: assigned and duration must be non-nil")
	}
	if modeDuration <= 0 {
		return nil, fmt.Errorf("ModeImpliesDuration: modeDuration must be > 0")
	}
	return &ModeImpliesDuration{assigned: assigned, duration: duration, modeDuration: modeDuration}, nil
}

func (c *ModeImpliesDuration) Variables() []*cpengine.FDVariable {
	return []*cpengine.FDVariable{c.assigned, c.duration}
}
func (c *ModeImpliesDuration) Type() string { return "ModeImpliesDuration" }
func (c *ModeImpliesDuration) String() string {
	return fmt.Sprintf("assigned(v%d)=true => duration(v%d)=%d", c.assigned.ID(), c.duration.ID(), c.modeDuration)
}

func (c *ModeImpliesDuration) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	aDom := solver.GetDomain(state, c.assigned.ID())
	dDom := solver.GetDomain(state, c.duration.ID())
	if aDom == nil || dDom == nil {
		return nil, fmt.Errorf("ModeImpliesDuration: nil domain")
	}
	target := timeutil.DomainValue(c.modeDuration)

	newState := state
	if aDom.IsSingleton() && aDom.SingletonValue() == 2 {
		nd := dDom.Intersect(cpengine.DomainValues(target))
		if nd.Count() == 0 {
			return nil, fmt.Errorf("ModeImpliesDuration: duration domain empty after forcing mode duration %d", c.modeDuration)
		}
		if !nd.Equal(dDom) {
			newState, _ = solver.SetDomain(newState, c.duration.ID(), nd)
			dDom = nd
		}
	}
	if !dDom.Has(target) {
		na := aDom.Remove(2)
		if na.Count() == 0 {
			return nil, fmt.Errorf("ModeImpliesDuration: assignment domain empty, mode duration %d unreachable", c.modeDuration)
		}
		if !na.Equal(aDom) {
			newState, _ = solver.SetDomain(newState, c.assigned.ID(), na)
		}
	}
	return newState, nil
}

// compileAssignment posts "exactly one machine" over each task's
// eligible modes and links the selected mode's duration via
// ModeImpliesDuration.
func (c *Compiler) compileAssignment() error {
	for _, taskID := range c.Build.TaskList {
		task, err := c.Problem.Task(taskID)
		if err != nil {
			return err
		}
		tv := c.Build.Tasks[taskID]
		if len(tv.AssignedM) == 0 {
			continue
		}

		vars := make([]*cpengine.FDVariable, 0, len(tv.AssignedM))
		for _, mode := range task.Modes {
			bv, ok := tv.AssignedM[mode.MachineResourceID]
			if !ok {
				continue
			}
			vars = append(vars, bv.Var)
		}
		coeffs := make([]int, len(vars))
		for i := range coeffs {
			coeffs[i] = 1
		}
		// Raw-engine sum of n booleans (each 1 or 2) equals n+1 iff
		// exactly one is true.
		total := c.Model.NewVariable(cpengine.DomainValues(len(vars) + 1))
		sum, err := cpengine.NewLinearSum(vars, coeffs, total)
		if err != nil {
			return fmt.Errorf("exactly-one-machine for task %s: %w", taskID, err)
		}
		c.Model.AddConstraint(sum)

		for _, mode := range task.Modes {
			bv, ok := tv.AssignedM[mode.MachineResourceID]
			if !ok {
				continue
			}
			modeDur := timeutil.ToTU(mode.DurationMinutes)
			link, err := NewModeImpliesDuration(bv.Var, tv.Duration.Var, modeDur)
			if err != nil {
				return fmt.Errorf("mode-implies-duration for task %s mode %s: %w", taskID, mode.ModeID, err)
			}
			c.Model.AddConstraint(link)
		}
	}
	return nil
}
