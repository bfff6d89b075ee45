package service

import (
	"math"

	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/model"
	"home-valuation/internal/rubric"
)

// Weights are the fixed category weights of the composite score
var Weights = map[rubric.Category]float64{
	rubric.Location:    0.35,
	rubric.Condition:   0.25,
	rubric.BuildingAge: 0.15,
	rubric.Layout:      0.10,
	rubric.Surrounding: 0.10,
}

// Aggregate turns normalized scores into a composite score and a price.
// basePrice and area are taken as given; callers validate them.
func Aggregate(scores *model.EvaluationScores, basePrice, area float64) (*model.EvaluationResult, error) {
	if scores == nil {
		return nil, apperrors.CallerContract(rubric.Location.ScoresField())
	}

	totals := make(map[rubric.Category]float64, len(Weights))
	weighted := 0.0
	for _, cat := range rubric.Categories() {
		m := scores.ByCategory(cat)
		if m == nil {
			return nil, apperrors.CallerContract(cat.ScoresField())
		}
		total := m.Sum()
		totals[cat] = total
		// Each product is rounded to float64 before it is added
		weighted += float64(total * Weights[cat])
	}

	composite := math.Floor(weighted)
	unitPrice := math.Floor(basePrice * (composite / 100))
	totalPrice := math.Floor(unitPrice * area)

	result := &model.EvaluationResult{
		TotalScore:  int(composite),
		PricePerSqM: int64(unitPrice),
		TotalPrice:  int64(totalPrice),
		DetailedScores: model.DetailedScores{
			LocationTotal:     totals[rubric.Location],
			ConditionTotal:    totals[rubric.Condition],
			BuildingAgeTotal:  totals[rubric.BuildingAge],
			LayoutTotal:       totals[rubric.Layout],
			SurroundingTotal:  totals[rubric.Surrounding],
			LocationScores:    scores.LocationScores,
			ConditionScores:   scores.ConditionScores,
			BuildingAgeScores: scores.BuildingAgeScores,
			LayoutScores:      scores.LayoutScores,
			SurroundingScores: scores.SurroundingScores,
		},
		ProsCons:  scores.ProsCons,
		BasePrice: basePrice,
		Area:      area,
	}

	return result, nil
}
