package model

import "strings"

// Renovation is the finish level of the property
type Renovation string

const (
	RenovationUnfinished Renovation = "unfinished"
	RenovationBasic      Renovation = "basic"
	RenovationFine       Renovation = "fine"
	RenovationLuxury     Renovation = "luxury"
)

var renovationLabels = map[Renovation]string{
	RenovationUnfinished: "毛坯",
	RenovationBasic:      "简装",
	RenovationFine:       "精装",
	RenovationLuxury:     "豪装",
}

// Label returns the wording used when describing the property to the oracle
func (r Renovation) Label() string {
	return renovationLabels[r]
}

// Valid reports whether r is one of the enumerated levels
func (r Renovation) Valid() bool {
	_, ok := renovationLabels[r]
	return ok
}

// ParseRenovation accepts a code ("fine") or its label ("精装"); empty input
// yields an empty Renovation (reduced mode)
func ParseRenovation(s string) (Renovation, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	r := Renovation(strings.ToLower(s))
	if r.Valid() {
		return r, true
	}
	trimmed := strings.TrimSuffix(s, "装修")
	for code, label := range renovationLabels {
		if s == label || trimmed == label {
			return code, true
		}
	}
	return "", false
}

// PropertyDescription is the subject of one evaluation. It is immutable once built.
type PropertyDescription struct {
	City        string     `json:"city"`
	District    string     `json:"district"`
	Community   string     `json:"community"`
	Layout      string     `json:"layout"`
	Floor       string     `json:"floor,omitempty"`       // e.g. "12/30"
	Orientation string     `json:"orientation,omitempty"` // e.g. "南北通透"
	Renovation  Renovation `json:"renovation,omitempty"`
	Description string     `json:"description,omitempty"`
}

// IsReduced reports whether optional facts are missing and the oracle must infer them
func (p PropertyDescription) IsReduced() bool {
	return p.Floor == "" || p.Orientation == "" || p.Renovation == "" || p.Description == ""
}
