package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BlockPack/internal/model"
)

func TestBaselineOrders(t *testing.T) {
	blocks := blocksOf([2]int{1, 1}, [2]int{3, 2}, [2]int{2, 3}, [2]int{1, 4})

	order, err := BaselineOrder(blocks, BaselineCatalog)
	require.NoError(t, err)
	assert.Equal(t, model.Genome{0, 1, 2, 3}, order)

	order, err = BaselineOrder(blocks, BaselineAreaDesc)
	require.NoError(t, err)
	assert.Equal(t, model.Genome{1, 2, 3, 0}, order)

	order, err = BaselineOrder(blocks, BaselineHeightFirst)
	require.NoError(t, err)
	assert.Equal(t, model.Genome{3, 2, 1, 0}, order)

	_, err = BaselineOrder(blocks, Baseline("zigzag"))
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidConfig))
}

func TestEvaluateBaseline(t *testing.T) {
	res, err := EvaluateBaseline(squareProblem(), BaselineCatalog)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Efficiency)
	assert.Equal(t, 1, res.Generations)
	assert.Len(t, res.Regions, 3)
}

func TestCompareScenarios(t *testing.T) {
	base := testConfig(21)
	base.EfficiencyLimit = 1.1
	base.MaxGenerations = 3

	scenarios := BuildDefaultScenarios(base)
	require.Len(t, scenarios, 6)
	assert.Equal(t, 20, scenarios[1].Config.PopulationSize)
	assert.Equal(t, int64(22), scenarios[2].Config.Seed)

	results := CompareScenarios(context.Background(), scenarios, mixedProblem(), nil)
	require.Len(t, results, len(scenarios))
	for _, r := range results {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, len(mixedProblem().Blocks), r.Placed+r.Dropped)
		assert.InDelta(t, 100.0*(1-r.Result.Efficiency), r.WastePercent, 1e-9)
	}
}
