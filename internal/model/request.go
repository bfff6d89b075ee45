package model

// EvaluateRequest represents a full evaluation request
type EvaluateRequest struct {
	City           string  `json:"city" binding:"required"`
	District       string  `json:"district" binding:"required"`
	Community      string  `json:"community" binding:"required"`
	Layout         string  `json:"layout" binding:"required"`
	Floor          string  `json:"floor,omitempty"`
	Direction      string  `json:"direction,omitempty"`
	Renovation     string  `json:"renovation,omitempty"`
	AdditionalDesc string  `json:"additionalDesc,omitempty"`
	Area           float64 `json:"area" binding:"required,gt=0"`
	BasePrice      float64 `json:"basePrice,omitempty" binding:"gte=0"` // 0 = resolve from district
}

// ScoreRequest aggregates caller-supplied scores without calling the oracle
type ScoreRequest struct {
	Scores    EvaluationScores `json:"scores"`
	District  string           `json:"district,omitempty"`
	Area      float64          `json:"area" binding:"required,gt=0"`
	BasePrice float64          `json:"basePrice,omitempty" binding:"gte=0"`
}

// DistrictPrice is a district and its base unit price
type DistrictPrice struct {
	Code      string  `json:"code" db:"code" yaml:"code"`
	Name      string  `json:"name" db:"name" yaml:"name"`
	BasePrice float64 `json:"basePrice" db:"base_price" yaml:"base_price"`
}

// RubricResponse represents the grouped rubric served to clients
type RubricResponse struct {
	Categories []RubricCategory `json:"categories"`
}

// RubricCategory is one category of the rubric response
type RubricCategory struct {
	Name   string        `json:"name"`
	Title  string        `json:"title"`
	Weight float64       `json:"weight"`
	Groups []RubricGroup `json:"groups"`
}

// RubricGroup is one group of a rubric category
type RubricGroup struct {
	Name  string       `json:"name"`
	Items []RubricItem `json:"items"`
}

// RubricItem is one scoring option in the rubric response
type RubricItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Key   string `json:"key"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// ErrorResponse is the error body returned by the API
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}
