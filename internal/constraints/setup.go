package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// ConditionalGap enforces toStart >= fromEnd + gap only when boolVar
// ("immediately_follows") is bound true, and prunes boolVar to false
// when the gap is already unreachable given the current start/end
// bounds. Grounded on the same reified-implication pattern as
// ModeImpliesDuration, with Arithmetic's bounds-consistent style for
// the variable-plus-constant-vs-variable comparison.
type ConditionalGap struct {
	boolVar          *cpengine.FDVariable
	fromEnd, toStart *cpengine.FDVariable
	gap              timeutil.TU
}

// NewConditionalGap validates and constructs a ConditionalGap.
func NewConditionalGap(boolVar, fromEnd, toStart *cpengine.FDVariable, gap timeutil.TU) (*ConditionalGap, error) {
	if boolVar == nil || fromEnd == nil || toStart == nil {
		return nil, fmt.Errorf("ConditionalGap: boolVar, fromEnd, toStart must be non-nil")
	}
	if gap < 0 {
		return nil, fmt.Errorf("ConditionalGap: gap must be >= 0")
	}
	return &ConditionalGap{boolVar: boolVar, fromEnd: fromEnd, toStart: toStart, gap: gap}, nil
}

func (c *ConditionalGap) Variables() []*cpengine.FDVariable {
	return []*cpengine.FDVariable{c.boolVar, c.fromEnd, c.toStart}
}
func (c *ConditionalGap) Type() string { return "ConditionalGap" }
func (c *ConditionalGap) String() string {
	return fmt.Sprintf("follows(v%d) => v%d >= v%d + %d", c.boolVar.ID(), c.toStart.ID(), c.fromEnd.ID(), c.gap)
}

func (c *ConditionalGap) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	boolDom := solver.GetDomain(state, c.boolVar.ID())
	fromDom := solver.GetDomain(state, c.fromEnd.ID())
	toDom := solver.GetDomain(state, c.toStart.ID())
	if boolDom == nil || fromDom == nil || toDom == nil {
		return nil, fmt.Errorf("ConditionalGap: nil domain")
	}
	newState := state

	if boolDom.IsSingleton() && boolDom.SingletonValue() == 2 {
		lo := fromDom.Min() + int(c.gap)
		nt := toDom.RemoveBelow(lo)
		if nt.Count() == 0 {
			return nil, fmt.Errorf("ConditionalGap: toStart domain empty after gap %d", c.gap)
		}
		if !nt.Equal(toDom) {
			newState, _ = solver.SetDomain(newState, c.toStart.ID(), nt)
			toDom = nt
		}
		hi := toDom.Max() - int(c.gap)
		nf := fromDom.RemoveAbove(hi)
		if nf.Count() == 0 {
			return nil, fmt.Errorf("ConditionalGap: fromEnd domain empty after gap %d", c.gap)
		}
		if !nf.Equal(fromDom) {
			newState, _ = solver.SetDomain(newState, c.fromEnd.ID(), nf)
		}
		return newState, nil
	}

	if fromDom.Min()+int(c.gap) > toDom.Max() {
		nb := boolDom.Remove(2)
		if nb.Count() == 0 {
			return nil, fmt.Errorf("ConditionalGap: boolean domain empty, gap %d unreachable", c.gap)
		}
		if !nb.Equal(boolDom) {
			newState, _ = solver.SetDomain(newState, c.boolVar.ID(), nb)
		}
	}
	return newState, nil
}

// compileSetupTimes posts, for every (from, to, machine) triple in
// c.SetupTimes with a positive gap and both tasks eligible on the
// same machine, a boolean "immediately_follows" and a ConditionalGap
// tying it to the gap. A cpengine.Table constraint restricts which
// immediately-follows booleans for a shared "from" task can jointly
// be true (a "from" task has at most one immediate successor),
// avoiding the need for a dedicated sequencing primitive the engine
// doesn't provide (spec's open question on NoOverlapWithTransitions).
func (c *Compiler) compileSetupTimes() error {
	if len(c.SetupTimes) == 0 {
		return nil
	}

	byFrom := make(map[string][]SetupKey)
	for key, gap := range c.SetupTimes {
		if gap <= 0 {
			continue
		}
		fromTV, okFrom := c.Build.Tasks[key.From]
		toTV, okTo := c.Build.Tasks[key.To]
		if !okFrom || !okTo {
			continue
		}
		boolVar := c.Model.IntVar(1, 2, fmt.Sprintf("follows_%s_%s_%s", key.From, key.To, key.Machine))
		cg, err := NewConditionalGap(boolVar, fromTV.End.Var, toTV.Start.Var, gap)
		if err != nil {
			return fmt.Errorf("conditional gap %+v: %w", key, err)
		}
		c.Model.AddConstraint(cg)
		byFrom[key.From] = append(byFrom[key.From], key)
		c.setupFollowsBool[key] = boolVar
	}

	for _, keys := range byFrom {
		if len(keys) < 2 {
			continue
		}
		vars := make([]*cpengine.FDVariable, len(keys))
		rows := make([][]int, 0, len(keys)+1)
		for i, k := range keys {
			vars[i] = c.setupFollowsBool[k]
		}
		// At most one "immediately follows" boolean may be true for a
		// shared predecessor: every row has exactly one 2 (true) or
		// none at all (the all-false row).
		allFalse := make([]int, len(keys))
		for i := range allFalse {
			allFalse[i] = 1
		}
		rows = append(rows, allFalse)
		for i := range keys {
			row := make([]int, len(keys))
			for j := range row {
				row[j] = 1
			}
			row[i] = 2
			rows = append(rows, row)
		}
		table, err := cpengine.NewTable(vars, rows)
		if err != nil {
			return fmt.Errorf("setup sequencing table for predecessor: %w", err)
		}
		c.Model.AddConstraint(table)
	}
	return nil
}
