package model

// DetailedScores is the per-category audit breakdown of a result
type DetailedScores struct {
	LocationTotal     float64          `json:"locationTotal"`
	ConditionTotal    float64          `json:"conditionTotal"`
	BuildingAgeTotal  float64          `json:"buildingAgeTotal"`
	LayoutTotal       float64          `json:"layoutTotal"`
	SurroundingTotal  float64          `json:"surroundingTotal"`
	LocationScores    CategoryScoreMap `json:"locationScores"`
	ConditionScores   CategoryScoreMap `json:"conditionScores"`
	BuildingAgeScores CategoryScoreMap `json:"buildingAgeScores"`
	LayoutScores      CategoryScoreMap `json:"layoutScores"`
	SurroundingScores CategoryScoreMap `json:"surroundingScores"`
}

// EvaluationResult is the valuation handed back to the caller
type EvaluationResult struct {
	TotalScore     int            `json:"totalScore"`
	PricePerSqM    int64          `json:"pricePerSqM"`
	TotalPrice     int64          `json:"totalPrice"`
	DetailedScores DetailedScores `json:"detailedScores"`
	ProsCons       *ProsCons      `json:"prosCons,omitempty"`

	// Inputs echoed for auditability
	BasePrice       float64 `json:"basePrice"`
	Area            float64 `json:"area"`
	District        string  `json:"district,omitempty"`
	BasePriceSource string  `json:"basePriceSource,omitempty"` // "request", "district" or "fallback"
}
