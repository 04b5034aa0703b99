package constraints

import (
	"fmt"
	"time"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// ShiftFit prunes a task's start/end into a single shift window once
// fitsVar is bound true, and prunes fitsVar to false once the window
// is already unreachable given the current start/end bounds.
// Grounded on the same reified-implication idiom as WeekdayWindow
// (unattended.go), specialized per §4.5.11 to one calendar-dated
// shift rather than a recurring weekday pattern.
type ShiftFit struct {
	fitsVar    *cpengine.FDVariable
	start, end *cpengine.FDVariable
	lo, hi     timeutil.TU
}

// NewShiftFit validates and constructs a ShiftFit.
func NewShiftFit(fitsVar, start, end *cpengine.FDVariable, lo, hi timeutil.TU) (*ShiftFit, error) {
	if fitsVar == nil || start == nil || end == nil {
		return nil, fmt.Errorf("ShiftFit: fitsVar, start, end must be non-nil")
	}
	if hi < lo {
		return nil, fmt.Errorf("ShiftFit: hi must be >= lo")
	}
	return &ShiftFit{fitsVar: fitsVar, start: start, end: end, lo: lo, hi: hi}, nil
}

func (s *ShiftFit) Variables() []*cpengine.FDVariable {
	return []*cpengine.FDVariable{s.fitsVar, s.start, s.end}
}
func (s *ShiftFit) Type() string { return "ShiftFit" }
func (s *ShiftFit) String() string {
	return fmt.Sprintf("fits(v%d) => v%d in [%d,%d]", s.fitsVar.ID(), s.start.ID(), s.lo, s.hi)
}

func (s *ShiftFit) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	fitsDom := solver.GetDomain(state, s.fitsVar.ID())
	startDom := solver.GetDomain(state, s.start.ID())
	endDom := solver.GetDomain(state, s.end.ID())
	if fitsDom == nil || startDom == nil || endDom == nil {
		return nil, fmt.Errorf("ShiftFit: nil domain")
	}
	newState := state

	loDV := timeutil.DomainValue(s.lo)
	hiDV := timeutil.DomainValue(s.hi)

	if fitsDom.IsSingleton() && fitsDom.SingletonValue() == 2 {
		ns := startDom.RemoveBelow(loDV).RemoveAbove(hiDV)
		if ns.Count() == 0 {
			return nil, fmt.Errorf("ShiftFit: start domain empty for window [%d,%d]", s.lo, s.hi)
		}
		if !ns.Equal(startDom) {
			newState, _ = solver.SetDomain(newState, s.start.ID(), ns)
		}
		ne := endDom.RemoveBelow(loDV).RemoveAbove(hiDV)
		if ne.Count() == 0 {
			return nil, fmt.Errorf("ShiftFit: end domain empty for window [%d,%d]", s.lo, s.hi)
		}
		if !ne.Equal(endDom) {
			newState, _ = solver.SetDomain(newState, s.end.ID(), ne)
		}
		return newState, nil
	}

	if startDom.Min() > hiDV || endDom.Max() < loDV || startDom.Max() < loDV {
		nf := fitsDom.Remove(2)
		if nf.Count() == 0 {
			return nil, fmt.Errorf("ShiftFit: fits domain empty, window [%d,%d] unreachable", s.lo, s.hi)
		}
		if !nf.Equal(fitsDom) {
			newState, _ = solver.SetDomain(newState, s.fitsVar.ID(), nf)
		}
	}
	return newState, nil
}

// AssignedRequiresShift prunes assigned to false once none of its
// candidate shift-fit booleans can still become true, and forces the
// last remaining candidate true once assigned is bound true and every
// other candidate has already been pruned false. Mirrors the
// exactly-one-of-n sum idiom used for machine assignment, but reified
// behind the operator-assignment boolean since a task need not use
// any particular operator.
type AssignedRequiresShift struct {
	assigned *cpengine.FDVariable
	fits     []*cpengine.FDVariable
}

// NewAssignedRequiresShift validates and constructs an AssignedRequiresShift.
func NewAssignedRequiresShift(assigned *cpengine.FDVariable, fits []*cpengine.FDVariable) (*AssignedRequiresShift, error) {
	if assigned == nil {
		return nil, fmt.Errorf("AssignedRequiresShift: assigned must be non-nil")
	}
	return &AssignedRequiresShift{assigned: assigned, fits: fits}, nil
}

func (a *AssignedRequiresShift) Variables() []*cpengine.FDVariable {
	vars := make([]*cpengine.FDVariable, 0, len(a.fits)+1)
	vars = append(vars, a.assigned)
	vars = append(vars, a.fits...)
	return vars
}
func (a *AssignedRequiresShift) Type() string { return "AssignedRequiresShift" }
func (a *AssignedRequiresShift) String() string {
	return fmt.Sprintf("assigned(v%d) requires one of %d shift fits", a.assigned.ID(), len(a.fits))
}

func (a *AssignedRequiresShift) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	assignedDom := solver.GetDomain(state, a.assigned.ID())
	if assignedDom == nil {
		return nil, fmt.Errorf("AssignedRequiresShift: nil assigned domain")
	}
	newState := state

	var live []*cpengine.FDVariable
	allDead := true
	anyTrue := false
	for _, f := range a.fits {
		fd := solver.GetDomain(state, f.ID())
		if fd == nil {
			return nil, fmt.Errorf("AssignedRequiresShift: nil fits domain")
		}
		if fd.Has(2) {
			allDead = false
			if fd.IsSingleton() && fd.SingletonValue() == 2 {
				anyTrue = true
			} else {
				live = append(live, f)
			}
		}
	}

	if allDead && assignedDom.Has(2) {
		na := assignedDom.Remove(2)
		if na.Count() == 0 {
			return nil, fmt.Errorf("AssignedRequiresShift: assigned domain empty, no shift fits")
		}
		if !na.Equal(assignedDom) {
			newState, _ = solver.SetDomain(newState, a.assigned.ID(), na)
		}
		return newState, nil
	}

	if assignedDom.IsSingleton() && assignedDom.SingletonValue() == 2 && len(live) == 1 && !anyTrue {
		fd := solver.GetDomain(newState, live[0].ID())
		nf := fd.RemoveBelow(2)
		if nf.Count() == 0 {
			return nil, fmt.Errorf("AssignedRequiresShift: last candidate shift domain empty")
		}
		if !nf.Equal(fd) {
			newState, _ = solver.SetDomain(newState, live[0].ID(), nf)
		}
	}

	return newState, nil
}

// compileShifts posts, for every task/operator assignment boolean,
// one ShiftFit per available shift the operator holds plus one
// AssignedRequiresShift tying the set of shift-fit booleans back to
// the assignment boolean. Operators with zero recorded shifts can
// never satisfy AssignedRequiresShift's empty-candidate-set case,
// which forces their assignment boolean false on first propagation.
func (c *Compiler) compileShifts() error {
	shiftsByOperator := make(map[string][]shiftWindow)
	for _, s := range c.Problem.Shifts {
		if !s.IsAvailable {
			continue
		}
		date, err := time.Parse("2006-01-02", s.ShiftDate)
		if err != nil {
			continue
		}
		dayBase := timeutil.ToTU(int(date.Sub(timeutil.Epoch).Minutes()))
		shiftsByOperator[s.OperatorID] = append(shiftsByOperator[s.OperatorID], shiftWindow{
			lo: dayBase + timeutil.TU(s.StartTU),
			hi: dayBase + timeutil.TU(s.EndTU),
		})
	}

	for _, taskID := range c.Build.TaskList {
		tv := c.Build.Tasks[taskID]
		for opID, assignedBV := range tv.AssignedO {
			windows := shiftsByOperator[opID]
			var fitsVars []*cpengine.FDVariable
			for i, w := range windows {
				if w.hi > c.Build.Horizon {
					w.hi = c.Build.Horizon
				}
				if w.lo > w.hi {
					continue
				}
				fitsVar := c.Model.IntVar(1, 2, fmt.Sprintf("fits_shift_%s_%s_%d", taskID, opID, i))
				sf, err := NewShiftFit(fitsVar, tv.Start.Var, tv.End.Var, w.lo, w.hi)
				if err != nil {
					return fmt.Errorf("shift fit %s/%s: %w", taskID, opID, err)
				}
				c.Model.AddConstraint(sf)
				fitsVars = append(fitsVars, fitsVar)
			}
			req, err := NewAssignedRequiresShift(assignedBV.Var, fitsVars)
			if err != nil {
				return fmt.Errorf("assigned-requires-shift %s/%s: %w", taskID, opID, err)
			}
			c.Model.AddConstraint(req)
		}
	}
	return nil
}

type shiftWindow struct {
	lo, hi timeutil.TU
}
