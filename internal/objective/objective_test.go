package objective

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_WeightedSumRejectsBadWeights(t *testing.T) {
	cfg := &MultiObjectiveConfig{
		Strategy: WeightedSum,
		Objectives: []WeightedObjective{
			{Kind: MinimizeMakespan, Weight: 0.3},
			{Kind: MinimizeTotalLateness, Weight: 0.3},
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_WeightedSumAcceptsNormalizedWeights(t *testing.T) {
	cfg := &MultiObjectiveConfig{
		Strategy: WeightedSum,
		Objectives: []WeightedObjective{
			{Kind: MinimizeMakespan, Weight: 0.6},
			{Kind: MinimizeTotalLateness, Weight: 0.4},
		},
	}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LexicographicRejectsDuplicatePriority(t *testing.T) {
	cfg := &MultiObjectiveConfig{
		Strategy: Lexicographic,
		Objectives: []WeightedObjective{
			{Kind: MinimizeTotalLateness, Priority: 1},
			{Kind: MinimizeMakespan, Priority: 1},
		},
	}
	require.Error(t, cfg.Validate())
}

func TestValidate_EpsilonConstraintRequiresExactlyOneFree(t *testing.T) {
	bound := 100
	cfg := &MultiObjectiveConfig{
		Strategy: EpsilonConstraint,
		Objectives: []WeightedObjective{
			{Kind: MinimizeTotalLateness, EpsilonBound: &bound},
			{Kind: MinimizeMakespan, EpsilonBound: &bound},
		},
	}
	require.Error(t, cfg.Validate())

	cfg.Objectives[1].EpsilonBound = nil
	assert.NoError(t, cfg.Validate())
}

func TestVariableSource_ResolveMissingVariableErrors(t *testing.T) {
	var src VariableSource
	_, err := src.Resolve(MinimizeMakespan)
	assert.Error(t, err)
}
