package constraints

import (
	"fmt"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// compilePrecedence posts start_S >= end_P for every precedence edge
// P -> S, including pattern precedences already expanded per
// instance by internal/problem's Assemble. A redundant depth-2
// transitive closure (A->B->C also posts A->C) is added to help
// propagation without the blow-up of a full transitive closure.
func (c *Compiler) compilePrecedence() error {
	successors := make(map[string][]string)
	for _, prec := range c.Problem.AllPrecedences() {
		successors[prec.PredTaskID] = append(successors[prec.PredTaskID], prec.SuccTaskID)
		if err := c.postPrecedence(prec.PredTaskID, prec.SuccTaskID); err != nil {
			return err
		}
	}

	seen := make(map[[2]string]bool)
	for _, prec := range c.Problem.AllPrecedences() {
		seen[[2]string{prec.PredTaskID, prec.SuccTaskID}] = true
	}
	for a, bs := range successors {
		for _, b := range bs {
			for _, cTask := range successors[b] {
				key := [2]string{a, cTask}
				if a == cTask || seen[key] {
					continue
				}
				seen[key] = true
				if err := c.postPrecedence(a, cTask); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Compiler) postPrecedence(predTaskID, succTaskID string) error {
	pred, ok := c.Build.Tasks[predTaskID]
	if !ok {
		return nil // dangling refs already surfaced by problem.Validate
	}
	succ, ok := c.Build.Tasks[succTaskID]
	if !ok {
		return nil
	}
	ineq, err := cpengine.NewInequality(succ.Start.Var, pred.End.Var, cpengine.GreaterEqual)
	if err != nil {
		return fmt.Errorf("precedence %s -> %s: %w", predTaskID, succTaskID, err)
	}
	c.Model.AddConstraint(ineq)
	return nil
}
