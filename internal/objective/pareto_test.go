package objective

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParetoSolution_Dominates(t *testing.T) {
	a := ParetoSolution{Values: map[Kind]int{MinimizeMakespan: 10, MinimizeTotalLateness: 5}}
	b := ParetoSolution{Values: map[Kind]int{MinimizeMakespan: 12, MinimizeTotalLateness: 5}}
	assert.True(t, a.Dominates(b))
	assert.False(t, b.Dominates(a))
}

func TestFrontier_DropsDominatedSolutions(t *testing.T) {
	solutions := []ParetoSolution{
		{Values: map[Kind]int{MinimizeMakespan: 10, MinimizeTotalLateness: 5}},
		{Values: map[Kind]int{MinimizeMakespan: 12, MinimizeTotalLateness: 5}}, // dominated
		{Values: map[Kind]int{MinimizeMakespan: 8, MinimizeTotalLateness: 9}},  // non-dominated tradeoff
	}
	f := Frontier(solutions)
	assert.Len(t, f, 2)
}

func TestAnalyze_EmptyFrontier(t *testing.T) {
	a := Analyze(nil)
	assert.Equal(t, -1, a.Recommended)
}

func TestAnalyze_RecommendsClosestToIdeal(t *testing.T) {
	frontier := []ParetoSolution{
		{Values: map[Kind]int{MinimizeMakespan: 10, MinimizeTotalLateness: 5}},
		{Values: map[Kind]int{MinimizeMakespan: 8, MinimizeTotalLateness: 9}},
	}
	a := Analyze(frontier)
	assert.GreaterOrEqual(t, a.Recommended, 0)
	assert.Contains(t, a.Ranges, MinimizeMakespan)
}
