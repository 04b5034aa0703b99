package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// WeekdayWindow ties a "scheduled on weekday d" boolean to the
// business-hours window that day implies: when the boolean is bound
// true, start is pruned into [d*96+28, d*96+95] and end to at most
// d*96+68; when start's
// domain has no overlap with that window at all, the boolean is
// pruned to false. Symmetric to ModeImpliesDuration.
type WeekdayWindow struct {
	dayBool    *cpengine.FDVariable
	start, end *cpengine.FDVariable
	day        int
}

// NewWeekdayWindow validates and constructs a WeekdayWindow.
func NewWeekdayWindow(dayBool, start, end *cpengine.FDVariable, day int) (*WeekdayWindow, error) {
	if dayBool == nil || start == nil || end == nil {
		return nil, fmt.Errorf("WeekdayWindow: dayBool, start, end must be non-nil")
	}
	if day < 0 {
		return nil, fmt.Errorf("WeekdayWindow: day must be >= 0")
	}
	return &WeekdayWindow{dayBool: dayBool, start: start, end: end, day: day}, nil
}

func (c *WeekdayWindow) Variables() []*cpengine.FDVariable {
	return []*cpengine.FDVariable{c.dayBool, c.start, c.end}
}
func (c *WeekdayWindow) Type() string { return "WeekdayWindow" }
func (c *WeekdayWindow) String() string {
	return fmt.Sprintf("weekday(v%d)=%d => v%d,v%d in business hours", c.dayBool.ID(), c.day, c.start.ID(), c.end.ID())
}

func (c *WeekdayWindow) window() (startLo, startHi, endHi timeutil.TU) {
	base := timeutil.TU(c.day) * timeutil.PerDay
	return base + timeutil.BusinessHoursStart, base + timeutil.PerDay - 1, base + timeutil.BusinessHoursEnd
}

func (c *WeekdayWindow) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	boolDom := solver.GetDomain(state, c.dayBool.ID())
	startDom := solver.GetDomain(state, c.start.ID())
	endDom := solver.GetDomain(state, c.end.ID())
	if boolDom == nil || startDom == nil || endDom == nil {
		return nil, fmt.Errorf("WeekdayWindow: nil domain")
	}
	startLo, startHi, endHi := c.window()
	newState := state

	if boolDom.IsSingleton() && boolDom.SingletonValue() == 2 {
		ns := startDom.RemoveBelow(timeutil.DomainValue(startLo)).RemoveAbove(timeutil.DomainValue(startHi))
		if ns.Count() == 0 {
			return nil, fmt.Errorf("WeekdayWindow: start domain empty for day %d", c.day)
		}
		if !ns.Equal(startDom) {
			newState, _ = solver.SetDomain(newState, c.start.ID(), ns)
			startDom = ns
		}
		ne := endDom.RemoveAbove(timeutil.DomainValue(endHi))
		if ne.Count() == 0 {
			return nil, fmt.Errorf("WeekdayWindow: end domain empty for day %d", c.day)
		}
		if !ne.Equal(endDom) {
			newState, _ = solver.SetDomain(newState, c.end.ID(), ne)
		}
		return newState, nil
	}

	windowed := startDom.RemoveBelow(timeutil.DomainValue(startLo)).RemoveAbove(timeutil.DomainValue(startHi))
	if windowed.Count() == 0 {
		nb := boolDom.Remove(2)
		if nb.Count() == 0 {
			return nil, fmt.Errorf("WeekdayWindow: boolean domain empty, day %d unreachable", c.day)
		}
		if !nb.Equal(boolDom) {
			newState, _ = solver.SetDomain(newState, c.dayBool.ID(), nb)
		}
	}
	return newState, nil
}

// compileUnattended posts, for every task with IsUnattended && IsSetup,
// exactly-one-of-five weekday booleans plus a WeekdayWindow per day;
// for every IsUnattended && !IsSetup task sharing its job with a
// paired setup task, start_execution >= end_setup.
func (c *Compiler) compileUnattended() error {
	setupByJob := make(map[string]string) // job_id -> setup task_id
	for _, taskID := range c.Build.TaskList {
		task, err := c.Problem.Task(taskID)
		if err != nil {
			return err
		}
		if task.IsUnattended && task.IsSetup {
			if err := c.postWeekdayWindows(taskID); err != nil {
				return err
			}
			setupByJob[task.JobID] = taskID
		}
	}

	for _, taskID := range c.Build.TaskList {
		task, err := c.Problem.Task(taskID)
		if err != nil {
			return err
		}
		if !task.IsUnattended || task.IsSetup {
			continue
		}
		setupTaskID, ok := setupByJob[task.JobID]
		if !ok {
			continue
		}
		setupTV := c.Build.Tasks[setupTaskID]
		execTV := c.Build.Tasks[taskID]
		ineq, err := cpengine.NewInequality(execTV.Start.Var, setupTV.End.Var, cpengine.GreaterEqual)
		if err != nil {
			return fmt.Errorf("unattended pairing %s after %s: %w", taskID, setupTaskID, err)
		}
		c.Model.AddConstraint(ineq)
	}
	return nil
}

const weekdaysPerWeek = 5

func (c *Compiler) postWeekdayWindows(taskID string) error {
	tv := c.Build.Tasks[taskID]
	dayBools := make([]*cpengine.FDVariable, weekdaysPerWeek)
	for d := 0; d < weekdaysPerWeek; d++ {
		dayBools[d] = c.Model.IntVar(1, 2, fmt.Sprintf("weekday_%s_%d", taskID, d))
	}
	coeffs := make([]int, weekdaysPerWeek)
	for i := range coeffs {
		coeffs[i] = 1
	}
	total := c.Model.NewVariable(cpengine.DomainValues(weekdaysPerWeek + 1))
	sum, err := cpengine.NewLinearSum(dayBools, coeffs, total)
	if err != nil {
		return fmt.Errorf("weekday exactly-one for task %s: %w", taskID, err)
	}
	c.Model.AddConstraint(sum)

	for d := 0; d < weekdaysPerWeek; d++ {
		ww, err := NewWeekdayWindow(dayBools[d], tv.Start.Var, tv.End.Var, d)
		if err != nil {
			return fmt.Errorf("weekday window for task %s day %d: %w", taskID, d, err)
		}
		c.Model.AddConstraint(ww)
	}
	return nil
}
