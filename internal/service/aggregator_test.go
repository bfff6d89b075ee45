package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/model"
)

func scoresWithTotals(location, condition, buildingAge, layout, surrounding float64) *model.EvaluationScores {
	return &model.EvaluationScores{
		LocationScores:    model.CategoryScoreMap{"A1": location},
		ConditionScores:   model.CategoryScoreMap{"A1": condition},
		BuildingAgeScores: model.CategoryScoreMap{"A1": buildingAge},
		LayoutScores:      model.CategoryScoreMap{"A1": layout},
		SurroundingScores: model.CategoryScoreMap{"A1": surrounding},
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		scores    *model.EvaluationScores
		basePrice float64
		area      float64
		wantScore int
		wantUnit  int64
		wantTotal int64
	}{
		{
			name:      "typical",
			scores:    scoresWithTotals(88, 91, 97, 95, 98),
			basePrice: 25554,
			area:      90,
			wantScore: 87,
			wantUnit:  22231,
			wantTotal: 2000790,
		},
		{
			name:      "fractional area is floored",
			scores:    scoresWithTotals(88, 91, 97, 95, 98),
			basePrice: 25554,
			area:      89.5,
			wantScore: 87,
			wantUnit:  22231,
			wantTotal: 1989674,
		},
		{
			name:      "composite is floored",
			scores:    scoresWithTotals(90, 80, 85, 75, 70),
			basePrice: 20000,
			area:      100,
			wantScore: 78,
			wantUnit:  15600,
			wantTotal: 1560000,
		},
		{
			// the weights sum to 0.95
			name:      "all categories at 100",
			scores:    scoresWithTotals(100, 100, 100, 100, 100),
			basePrice: 10000,
			area:      1,
			wantScore: 95,
			wantUnit:  9500,
			wantTotal: 9500,
		},
		{
			name:      "zero scores",
			scores:    scoresWithTotals(0, 0, 0, 0, 0),
			basePrice: 25554,
			area:      90,
			wantScore: 0,
			wantUnit:  0,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Aggregate(tt.scores, tt.basePrice, tt.area)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, result.TotalScore)
			assert.Equal(t, tt.wantUnit, result.PricePerSqM)
			assert.Equal(t, tt.wantTotal, result.TotalPrice)
			assert.Equal(t, tt.basePrice, result.BasePrice)
			assert.Equal(t, tt.area, result.Area)
		})
	}
}

func TestAggregateBreakdown(t *testing.T) {
	scores := &model.EvaluationScores{
		LocationScores:    model.CategoryScoreMap{"A1": 28, "B2": 22, "A3": 18, "B5": 7, "A5": 8},
		ConditionScores:   model.CategoryScoreMap{},
		BuildingAgeScores: model.CategoryScoreMap{"B1": 92},
		LayoutScores:      model.CategoryScoreMap{"A1": 32.5},
		SurroundingScores: model.CategoryScoreMap{"A1": 26},
		ProsCons:          &model.ProsCons{Pros: []string{"近地铁"}, Cons: []string{}},
	}

	result, err := Aggregate(scores, 20000, 100)
	require.NoError(t, err)

	assert.Equal(t, 83.0, result.DetailedScores.LocationTotal)
	assert.Equal(t, 0.0, result.DetailedScores.ConditionTotal)
	assert.Equal(t, 92.0, result.DetailedScores.BuildingAgeTotal)
	assert.Equal(t, 32.5, result.DetailedScores.LayoutTotal)
	assert.Equal(t, 26.0, result.DetailedScores.SurroundingTotal)
	assert.Equal(t, scores.LocationScores, result.DetailedScores.LocationScores)
	assert.Equal(t, []string{"近地铁"}, result.ProsCons.Pros)
}

func TestAggregateMissingCategory(t *testing.T) {
	scores := scoresWithTotals(1, 2, 3, 4, 5)
	scores.ConditionScores = nil
	scores.LayoutScores = nil

	_, err := Aggregate(scores, 20000, 100)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCallerContract, apperrors.GetCode(err))
	assert.Equal(t, "conditionScores", apperrors.GetField(err))

	_, err = Aggregate(nil, 20000, 100)
	assert.Equal(t, apperrors.CodeCallerContract, apperrors.GetCode(err))
}

func TestAggregateFractionalScoresAreDeterministic(t *testing.T) {
	scores := &model.EvaluationScores{
		LocationScores:    model.CategoryScoreMap{},
		ConditionScores:   model.CategoryScoreMap{},
		BuildingAgeScores: model.CategoryScoreMap{},
		LayoutScores:      model.CategoryScoreMap{},
		SurroundingScores: model.CategoryScoreMap{
			"A1": 0.1, "A2": 0.2, "A3": 0.3, "A4": 0.4,
			"A5": 1.7, "A6": 2.3, "A7": 2.9, "A8": 2.1,
		},
	}

	for i := 0; i < 500; i++ {
		result, err := Aggregate(scores, 20000, 100)
		require.NoError(t, err)
		require.Equal(t, 10.0, result.DetailedScores.SurroundingTotal, "run %d", i)
		require.Equal(t, 1, result.TotalScore, "run %d", i)
		require.Equal(t, int64(200), result.PricePerSqM, "run %d", i)
	}
}

func TestCategoryScoreMapKeysSorted(t *testing.T) {
	m := model.CategoryScoreMap{"C1": 1, "A2": 2, "B1": 3}
	assert.Equal(t, []string{"A2", "B1", "C1"}, m.Keys())
	assert.Equal(t, 6.0, m.Sum())
	assert.Equal(t, 0.0, model.CategoryScoreMap{}.Sum())
}

func TestWeights(t *testing.T) {
	sum := 0.0
	for _, w := range Weights {
		sum += w
	}
	assert.InDelta(t, 0.95, sum, 1e-9)
}
