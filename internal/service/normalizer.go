package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"home-valuation/internal/contracts"
	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/model"
	"home-valuation/internal/rubric"
	"home-valuation/internal/utils"
)

const prosConsField = "prosCons"

// requiredFields lists the reply keys in the order they are checked
func requiredFields() []string {
	cats := rubric.Categories()
	fields := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		fields = append(fields, c.ScoresField())
	}
	return append(fields, prosConsField)
}

// Normalizer turns a raw oracle envelope into canonical evaluation scores
type Normalizer struct {
	catalog *rubric.Catalog
	strict  bool
}

// NewNormalizer creates a normalizer. In strict mode every score must name a
// rubric item, fall inside its range, and each group must be scored exactly once.
func NewNormalizer(catalog *rubric.Catalog, strict bool) *Normalizer {
	return &Normalizer{catalog: catalog, strict: strict}
}

// Normalize parses the completion envelope and validates the embedded reply
func (n *Normalizer) Normalize(raw []byte) (*model.EvaluationScores, error) {
	content, err := extractContent(raw)
	if err != nil {
		return nil, err
	}

	data, err := utils.ExtractJSON(content)
	if err != nil {
		return nil, apperrors.MalformedJSON(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.MalformedJSON(err)
	}

	for _, field := range requiredFields() {
		if _, ok := doc[field]; !ok {
			return nil, apperrors.MissingField(field)
		}
	}

	scores := &model.EvaluationScores{}
	for _, cat := range rubric.Categories() {
		field := cat.ScoresField()
		if err := validateShape(doc[field], contracts.ValidateCategory); err != nil {
			return nil, apperrors.InvalidShape(field, err)
		}

		var payload categoryPayload
		if err := json.Unmarshal(doc[field], &payload); err != nil {
			return nil, apperrors.InvalidShape(field, err)
		}
		scores.SetCategory(cat, payload.Flatten())
	}

	if err := validateShape(doc[prosConsField], contracts.ValidateProsCons); err != nil {
		return nil, apperrors.InvalidShape(prosConsField, err)
	}
	var pc *model.ProsCons
	if err := json.Unmarshal(doc[prosConsField], &pc); err != nil {
		return nil, apperrors.InvalidShape(prosConsField, err)
	}
	scores.ProsCons = normalizeProsCons(pc)

	if n.strict {
		if err := n.checkRubric(scores); err != nil {
			return nil, err
		}
	}

	return scores, nil
}

// extractContent pulls choices[0].message.content out of the envelope
func extractContent(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return "", apperrors.OracleProtocol(http.StatusOK, truncate(string(raw), 200),
			fmt.Errorf("response is not a completion envelope"))
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() || content.Type == gjson.Null {
		return "", apperrors.EmptyReply()
	}
	text := content.String()
	if strings.TrimSpace(text) == "" {
		return "", apperrors.EmptyReply()
	}
	return text, nil
}

func validateShape(raw json.RawMessage, validate func(interface{}) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return validate(v)
}

// categoryPayload is the tagged union of the two accepted category shapes:
// a mapping of key to score, or a sequence of single-entry mappings
type categoryPayload struct {
	mapping  model.CategoryScoreMap
	sequence []model.CategoryScoreMap
}

func (p *categoryPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty category payload")
	}

	switch trimmed[0] {
	case '{':
		return json.Unmarshal(trimmed, &p.mapping)
	case '[':
		if err := json.Unmarshal(trimmed, &p.sequence); err != nil {
			return err
		}
		for i, entry := range p.sequence {
			if len(entry) != 1 {
				return fmt.Errorf("element %d has %d entries, want 1", i, len(entry))
			}
		}
		return nil
	default:
		return fmt.Errorf("category payload must be an object or an array")
	}
}

// Flatten merges the payload into one map; in a sequence later duplicates win
func (p categoryPayload) Flatten() model.CategoryScoreMap {
	out := make(model.CategoryScoreMap, len(p.mapping)+len(p.sequence))
	for k, v := range p.mapping {
		out[k] = v
	}
	for _, entry := range p.sequence {
		for k, v := range entry {
			out[k] = v
		}
	}
	return out
}

func normalizeProsCons(pc *model.ProsCons) *model.ProsCons {
	if pc == nil {
		pc = &model.ProsCons{}
	}
	if pc.Pros == nil {
		pc.Pros = []string{}
	}
	if pc.Cons == nil {
		pc.Cons = []string{}
	}
	return pc
}

func (n *Normalizer) checkRubric(scores *model.EvaluationScores) error {
	for _, cat := range rubric.Categories() {
		field := cat.ScoresField()
		perGroup := make(map[string]int)

		for key, value := range scores.ByCategory(cat) {
			item, ok := n.catalog.Lookup(cat, key)
			if !ok {
				return apperrors.RubricViolation(field, fmt.Sprintf("unknown item %q", key))
			}
			if !item.Contains(value) {
				return apperrors.RubricViolation(field,
					fmt.Sprintf("score %g for %s outside %d-%d", value, item.ID, item.Min, item.Max))
			}
			perGroup[item.Group]++
		}

		for _, g := range n.catalog.Groups(cat) {
			if count := perGroup[g.Name]; count != 1 {
				return apperrors.RubricViolation(field,
					fmt.Sprintf("group %s scored %d times, want exactly once", g.Name, count))
			}
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
