// Package varbuild creates the cpengine.FDVariable set for a compiled
// problem: per-task start/duration/end variables and per-(task,
// machine)/(task, operator) assignment booleans. It owns the
// TU-to-domain-value conversion; every other package works in TU
// space through the wrapper types here.
package varbuild

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/scherr"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// BoolVar wraps a {1,2}-domain FDVariable so callers never see the
// raw engine encoding (engine value 1 = false, 2 = true), matching
// the convention cpengine's own Count/EqualityReified/InSetReified
// constraints already use.
type BoolVar struct {
	Var *cpengine.FDVariable
}

// NewBoolVar creates a fresh {1,2}-domain variable on m.
func NewBoolVar(m *cpengine.Model, name string) BoolVar {
	return BoolVar{Var: m.IntVar(1, 2, name)}
}

// IsTrue reports whether the underlying variable is bound to "true"
// (engine value 2).
func (b BoolVar) IsTrue() bool {
	return b.Var.IsBound() && b.Var.Value() == 2
}

// Value returns the bound boolean value. Behavior is undefined if
// the variable is not yet bound.
func (b BoolVar) Value() bool {
	return b.Var.Value() == 2
}

// TUVar wraps an FDVariable whose domain values are TU+1 under the
// engine's 1-indexed offset, exposing a TU-space API.
type TUVar struct {
	Var *cpengine.FDVariable
}

// NewTUVar creates a variable over [lo, hi] TU, translated to the
// engine's domain-value offset.
func NewTUVar(m *cpengine.Model, lo, hi timeutil.TU, name string) TUVar {
	return TUVar{Var: m.IntVar(timeutil.DomainValue(lo), timeutil.DomainValue(hi), name)}
}

// Value returns the bound TU value. Behavior is undefined if the
// variable is not yet bound.
func (v TUVar) Value() timeutil.TU {
	return timeutil.FromDomainValue(v.Var.Value())
}

// IsBound reports whether the underlying variable is bound.
func (v TUVar) IsBound() bool {
	return v.Var.IsBound()
}

// TaskVars holds every decision variable attached to one (expanded)
// task: its interval and its per-machine/per-operator assignment
// booleans.
type TaskVars struct {
	TaskID    string
	Start     TUVar
	Duration  TUVar
	End       TUVar
	AssignedM map[string]BoolVar // machine resource_id -> assigned
	AssignedO map[string]BoolVar // operator_id -> assigned
}

// Build contains the compiled variable set for a Problem, ready for
// internal/constraints to post propagation constraints over.
type Build struct {
	Model    *cpengine.Model
	Horizon  timeutil.TU
	Tasks    map[string]*TaskVars
	TaskList []string // stable iteration order, insertion order
}

// LatestStart returns the clipped latest-start bound for a task, per
// the per-task latest-start rule: due date minus the sum of
// minimum-mode durations of this task and its known successors along
// its job's task order, clipped into [0, horizon - min_duration].
//
// successorMinDurationSum is the caller-computed Σ over tasks at or
// after this one in its job's order of their minimum-mode duration,
// expressed in TU. Computing the per-job order is left to the caller;
// this function only applies the clipping rule.
func LatestStart(dueTU timeutil.TU, successorMinDurationSum timeutil.TU, horizon timeutil.TU, taskMinDuration timeutil.TU) timeutil.TU {
	due := timeutil.ClampDueTU(dueTU)
	raw := due - successorMinDurationSum
	return timeutil.Clip(raw, 0, horizon-taskMinDuration)
}

// New creates a cpengine.Model and populates it with variables for
// every task in p, plus assignment booleans for every eligible
// (task, machine) and (task, operator) pair. horizon and
// latestStartFor are supplied by the caller (cmd/scheduled computes
// them with internal/timeutil); New only builds variables from the
// bounds it is given.
func New(p *problem.Problem, horizon timeutil.TU, latestStartFor func(taskID string) timeutil.TU) (*Build, error) {
	m := cpengine.NewModel()
	b := &Build{
		Model: m,
		Horizon: horizon,
		Tasks: make(map[string]*TaskVars, len(p.Tasks)),
	}

	for _, t := range p.Tasks {
		if len(t.Modes) == 0 {
			return nil, scherr.New(scherr.InvalidProblem, "cannot build variables for task with no modes", t.TaskID)
		}
		minDur := timeutil.ToTU(t.MinDurationMinutes())
		maxDur := timeutil.ToTU(t.MaxDurationMinutes())
		latestStart := latestStartFor(t.TaskID)
		if latestStart < 0 || latestStart > horizon {
			latestStart = horizon
		}

		tv := &TaskVars{
			TaskID:    t.TaskID,
			Start:     NewTUVar(m, 0, latestStart, fmt.Sprintf("start_%s", t.TaskID)),
			Duration:  NewTUVar(m, minDur, maxDur, fmt.Sprintf("dur_%s", t.TaskID)),
			End:       NewTUVar(m, 0, horizon, fmt.Sprintf("end_%s", t.TaskID)),
			AssignedM: make(map[string]BoolVar, len(t.Modes)),
		}

		for _, mode := range t.Modes {
			tv.AssignedM[mode.MachineResourceID] = NewBoolVar(m, fmt.Sprintf("assign_%s_%s", t.TaskID, mode.MachineResourceID))
		}

		if t.MinOperators > 0 {
			tv.AssignedO = make(map[string]BoolVar)
			for _, op := range p.Operators {
				if operatorQualifies(p, &t, &op) {
					tv.AssignedO[op.OperatorID] = NewBoolVar(m, fmt.Sprintf("opassign_%s_%s", t.TaskID, op.OperatorID))
				}
			}
		}

		b.Tasks[t.TaskID] = tv
		b.TaskList = append(b.TaskList, t.TaskID)
	}

	return b, nil
}

// operatorQualifies reports whether op meets every mandatory skill
// requirement attached to t at the required level or above.
func operatorQualifies(p *problem.Problem, t *entity.Task, op *entity.Operator) bool {
	for _, req := range p.TaskSkillReqIndex[t.TaskID] {
		if !req.IsMandatory {
			continue
		}
		if !op.HasSkillAtLeast(req.SkillID, req.RequiredLevel) {
			return false
		}
	}
	return true
}
