package model

import (
	"sort"

	"home-valuation/internal/rubric"
)

// CategoryScoreMap maps an item key to the score assigned to it within one category
type CategoryScoreMap map[string]float64

// Keys returns the item keys in sorted order
func (m CategoryScoreMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sum returns the category total; an empty map sums to 0.
// Values are added in key order so fractional totals are reproducible.
func (m CategoryScoreMap) Sum() float64 {
	total := 0.0
	for _, k := range m.Keys() {
		total += m[k]
	}
	return total
}

// ProsCons holds the oracle's free-text advantages and drawbacks
type ProsCons struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// EvaluationScores is the canonical oracle result, one map per category
type EvaluationScores struct {
	LocationScores    CategoryScoreMap `json:"locationScores"`
	ConditionScores   CategoryScoreMap `json:"conditionScores"`
	BuildingAgeScores CategoryScoreMap `json:"buildingAgeScores"`
	LayoutScores      CategoryScoreMap `json:"layoutScores"`
	SurroundingScores CategoryScoreMap `json:"surroundingScores"`
	ProsCons          *ProsCons        `json:"prosCons,omitempty"`
}

// ByCategory returns the score map of the given category
func (s *EvaluationScores) ByCategory(c rubric.Category) CategoryScoreMap {
	switch c {
	case rubric.Location:
		return s.LocationScores
	case rubric.Condition:
		return s.ConditionScores
	case rubric.BuildingAge:
		return s.BuildingAgeScores
	case rubric.Layout:
		return s.LayoutScores
	case rubric.Surrounding:
		return s.SurroundingScores
	}
	return nil
}

// SetCategory stores the score map of the given category
func (s *EvaluationScores) SetCategory(c rubric.Category, m CategoryScoreMap) {
	switch c {
	case rubric.Location:
		s.LocationScores = m
	case rubric.Condition:
		s.ConditionScores = m
	case rubric.BuildingAge:
		s.BuildingAgeScores = m
	case rubric.Layout:
		s.LayoutScores = m
	case rubric.Surrounding:
		s.SurroundingScores = m
	}
}
