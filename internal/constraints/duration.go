package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// SumLink enforces dst = a + b over two non-constant operands, a case
// cpengine.Arithmetic doesn't cover directly (Arithmetic's second
// operand is a fixed offset). It delegates entirely to
// cpengine.NewLinearSum with coefficients [1, 1, -1] against a bound
// total: in domain-value space (each TU variable carries a +1
// offset), a + b - dst collapses to the constant 1 rather than 0, so
// the total variable is a singleton domain at value 1.
type SumLink struct {
	sum *cpengine.LinearSum
}

// NewSumLink creates a dst = a + b constraint over TU-space variables
// a, b, dst (each already offset by varbuild's domain-value
// convention).
func NewSumLink(m *cpengine.Model, a, b, dst *cpengine.FDVariable) (*SumLink, error) {
	if a == nil || b == nil || dst == nil {
		return nil, fmt.Errorf("SumLink: a, b, dst must be non-nil")
	}
	one := m.NewVariable(cpengine.DomainValues(1))
	sum, err := cpengine.NewLinearSum([]*cpengine.FDVariable{a, b, dst}, []int{1, 1, -1}, one)
	if err != nil {
		return nil, err
	}
	return &SumLink{sum: sum}, nil
}

func (c *SumLink) Variables() []*cpengine.FDVariable { return c.sum.Variables() }
func (c *SumLink) Type() string                       { return "SumLink" }
func (c *SumLink) String() string                     { return "SumLink(" + c.sum.String() + ")" }

func (c *SumLink) Propagate(solver *cpengine.Solver, state *cpengine.SolverState) (*cpengine.SolverState, error) {
	return c.sum.Propagate(solver, state)
}

// compileDuration posts end_T = start_T + duration_T for every task,
// grounded on SumLink (itself grounded on cpengine.NewLinearSum).
func (c *Compiler) compileDuration() error {
	for _, taskID := range c.Build.TaskList {
		tv := c.Build.Tasks[taskID]
		link, err := NewSumLink(c.Model, tv.Start.Var, tv.Duration.Var, tv.End.Var)
		if err != nil {
			return fmt.Errorf("duration link for task %s: %w", taskID, err)
		}
		c.Model.AddConstraint(link)
	}
	return nil
}
