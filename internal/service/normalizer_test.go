package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/model"
	"home-valuation/internal/rubric"
)

// envelope wraps reply content in a chat completion response body
func envelope(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id": "cmpl-1",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

const validReply = `{
	"locationScores": {"B1.区域性商业中心 20-25": 22, "B2.优质教育资源 20-25": 21},
	"conditionScores": [{"A1.交付标准（全新精装） 35-40": 36}, {"B2.维护状况（轻微磨损） 20-25": 22}],
	"buildingAgeScores": {"B1.5-10年 90-94": 92},
	"layoutScores": {"A2.南北通透性 30-35": 32.5},
	"surroundingScores": {},
	"prosCons": {"pros": ["学区好"], "cons": ["停车难"]}
}`

func TestNormalizeValidReply(t *testing.T) {
	n := NewNormalizer(rubric.Default(), false)

	scores, err := n.Normalize(envelope(t, validReply))
	require.NoError(t, err)

	assert.Equal(t, model.CategoryScoreMap{"B1.区域性商业中心 20-25": 22, "B2.优质教育资源 20-25": 21}, scores.LocationScores)
	assert.Equal(t, model.CategoryScoreMap{"A1.交付标准（全新精装） 35-40": 36, "B2.维护状况（轻微磨损） 20-25": 22}, scores.ConditionScores)
	assert.Equal(t, 32.5, scores.LayoutScores["A2.南北通透性 30-35"])
	assert.NotNil(t, scores.SurroundingScores)
	assert.Empty(t, scores.SurroundingScores)
	assert.Equal(t, &model.ProsCons{Pros: []string{"学区好"}, Cons: []string{"停车难"}}, scores.ProsCons)
}

func TestNormalizeToleratesFenceAndProse(t *testing.T) {
	n := NewNormalizer(rubric.Default(), false)

	fenced, err := n.Normalize(envelope(t, "```json\n"+validReply+"\n```"))
	require.NoError(t, err)
	assert.Len(t, fenced.LocationScores, 2)

	prose, err := n.Normalize(envelope(t, "以下是评估结果：\n"+validReply+"\n如有疑问请联系。"))
	require.NoError(t, err)
	assert.Len(t, prose.ConditionScores, 2)
}

func TestNormalizeSequenceLaterDuplicateWins(t *testing.T) {
	reply := `{
		"locationScores": [{"A1": 25}, {"B2": 20}, {"A1": 28}],
		"conditionScores": {}, "buildingAgeScores": {}, "layoutScores": {}, "surroundingScores": {},
		"prosCons": null
	}`
	scores, err := NewNormalizer(rubric.Default(), false).Normalize(envelope(t, reply))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryScoreMap{"A1": 28, "B2": 20}, scores.LocationScores)
	assert.Equal(t, &model.ProsCons{Pros: []string{}, Cons: []string{}}, scores.ProsCons)
}

func TestNormalizeProsConsDefaults(t *testing.T) {
	reply := `{"locationScores": {}, "conditionScores": {}, "buildingAgeScores": {}, "layoutScores": {}, "surroundingScores": {}, "prosCons": {"pros": ["安静"]}}`
	scores, err := NewNormalizer(rubric.Default(), false).Normalize(envelope(t, reply))
	require.NoError(t, err)
	assert.Equal(t, []string{"安静"}, scores.ProsCons.Pros)
	assert.Equal(t, []string{}, scores.ProsCons.Cons)
}

func TestNormalizeErrors(t *testing.T) {
	n := NewNormalizer(rubric.Default(), false)

	tests := []struct {
		name      string
		raw       []byte
		wantCode  string
		wantField string
	}{
		{
			name:     "envelope is not JSON",
			raw:      []byte("<html>Bad Gateway</html>"),
			wantCode: apperrors.CodeOracleProtocol,
		},
		{
			name:     "no choices",
			raw:      []byte(`{"choices": []}`),
			wantCode: apperrors.CodeEmptyReply,
		},
		{
			name:     "null content",
			raw:      []byte(`{"choices": [{"message": {"role": "assistant", "content": null}}]}`),
			wantCode: apperrors.CodeEmptyReply,
		},
		{
			name:     "blank content",
			raw:      envelope(t, "   \n"),
			wantCode: apperrors.CodeEmptyReply,
		},
		{
			name:     "content is prose",
			raw:      envelope(t, "抱歉，我无法评估该房产。"),
			wantCode: apperrors.CodeMalformedJSON,
		},
		{
			name:     "content is an array",
			raw:      envelope(t, `[1, 2, 3]`),
			wantCode: apperrors.CodeMalformedJSON,
		},
		{
			name:      "first missing field in fixed order",
			raw:       envelope(t, `{"locationScores": {}, "layoutScores": {}, "prosCons": null}`),
			wantCode:  apperrors.CodeMissingField,
			wantField: "conditionScores",
		},
		{
			name:      "prosCons missing",
			raw:       envelope(t, `{"locationScores": {}, "conditionScores": {}, "buildingAgeScores": {}, "layoutScores": {}, "surroundingScores": {}}`),
			wantCode:  apperrors.CodeMissingField,
			wantField: "prosCons",
		},
		{
			name:      "category is a number",
			raw:       envelope(t, `{"locationScores": {}, "conditionScores": 85, "buildingAgeScores": {}, "layoutScores": {}, "surroundingScores": {}, "prosCons": null}`),
			wantCode:  apperrors.CodeInvalidShape,
			wantField: "conditionScores",
		},
		{
			name:      "score is a string",
			raw:       envelope(t, `{"locationScores": {"A1": "28"}, "conditionScores": {}, "buildingAgeScores": {}, "layoutScores": {}, "surroundingScores": {}, "prosCons": null}`),
			wantCode:  apperrors.CodeInvalidShape,
			wantField: "locationScores",
		},
		{
			name:      "sequence element with two entries",
			raw:       envelope(t, `{"locationScores": {}, "conditionScores": {}, "buildingAgeScores": [{"A1": 96, "B1": 91}], "layoutScores": {}, "surroundingScores": {}, "prosCons": null}`),
			wantCode:  apperrors.CodeInvalidShape,
			wantField: "buildingAgeScores",
		},
		{
			name:      "prosCons is a string",
			raw:       envelope(t, `{"locationScores": {}, "conditionScores": {}, "buildingAgeScores": {}, "layoutScores": {}, "surroundingScores": {}, "prosCons": "none"}`),
			wantCode:  apperrors.CodeInvalidShape,
			wantField: "prosCons",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := n.Normalize(tt.raw)
			require.Error(t, err)
			assert.Nil(t, scores)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, apperrors.GetField(err))
			}
		})
	}
}

// strictReply scores every group once with in-range values
func strictReply(t *testing.T, override map[string]interface{}) []byte {
	t.Helper()
	c := rubric.Default()
	doc := map[string]interface{}{"prosCons": map[string]interface{}{"pros": []string{}, "cons": []string{}}}
	for _, cat := range rubric.Categories() {
		m := map[string]float64{}
		for _, g := range c.Groups(cat) {
			item := g.Items[0]
			m[item.Key()] = float64(item.Min)
		}
		doc[cat.ScoresField()] = m
	}
	for k, v := range override {
		doc[k] = v
	}
	content, err := json.Marshal(doc)
	require.NoError(t, err)
	return envelope(t, string(content))
}

func TestNormalizeStrictRubric(t *testing.T) {
	strict := NewNormalizer(rubric.Default(), true)

	_, err := strict.Normalize(strictReply(t, nil))
	require.NoError(t, err)

	tests := []struct {
		name     string
		override map[string]interface{}
		field    string
	}{
		{
			name:     "unknown item",
			override: map[string]interface{}{"buildingAgeScores": map[string]float64{"Z9.不存在 1-2": 1}},
			field:    "buildingAgeScores",
		},
		{
			name:     "score out of range",
			override: map[string]interface{}{"buildingAgeScores": map[string]float64{"A1.0-5年 95-100": 101}},
			field:    "buildingAgeScores",
		},
		{
			name:     "group scored twice",
			override: map[string]interface{}{"buildingAgeScores": map[string]float64{"A1.0-5年 95-100": 96, "B1.5-10年 90-94": 91}},
			field:    "buildingAgeScores",
		},
		{
			name:     "group not scored",
			override: map[string]interface{}{"buildingAgeScores": map[string]float64{}},
			field:    "buildingAgeScores",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := strict.Normalize(strictReply(t, tt.override))
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeRubricViolation, apperrors.GetCode(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
		})
	}

	// the same replies pass when the rubric is trusted
	lenient := NewNormalizer(rubric.Default(), false)
	_, err = lenient.Normalize(strictReply(t, tests[2].override))
	assert.NoError(t, err)
}
