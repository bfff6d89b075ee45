package service

import (
	"fmt"
	"strings"

	"home-valuation/internal/config"
	"home-valuation/internal/model"
	"home-valuation/internal/rubric"
)

// notProvided marks a property fact the caller left out; the oracle infers a typical value
const notProvided = "未提供，请按常见情况推断"

// OracleParams are the invocation parameters taken from configuration
type OracleParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// ParamsFromConfig extracts invocation parameters from the oracle configuration
func ParamsFromConfig(cfg *config.OpenAIConfig) OracleParams {
	return OracleParams{
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
		MaxTokens:   cfg.ChatMaxTokens,
		JSONMode:    cfg.JSONMode,
	}
}

const systemPreamble = `你是一位专业的房产评估师。请根据提供的房产信息，严格按照以下评分规则进行评估。

`

const systemRules = `
## 重要定义
- 组别：评分规则中用方括号【】标识的分组，如【商业等级】、【景观等级】、【交通等级】

## 输出要求
0. 每个组别必须有且仅有一个评分项
1. 只返回一个JSON对象，不要包含任何额外文本、解释或代码块标记
2. 顶层字段必须且只能是：locationScores, conditionScores, buildingAgeScores, layoutScores, surroundingScores, prosCons
3. 每个 *Scores 字段是一个对象，键为所选评分项 "[规则ID].[规则描述] [分数范围]"，值为实际分数（数字）
4. prosCons 包含 pros 和 cons 两个字符串数组

示例：
{
  "locationScores": {"B1.区域性商业中心 20-25": 22, "B2.优质教育资源 20-25": 21},
  "conditionScores": {"B1.交付标准（良好装修） 25-35": 30},
  "buildingAgeScores": {"B1.5-10年 90-94": 92},
  "layoutScores": {"A2.南北通透性 30-35": 32},
  "surroundingScores": {"B1.商业购物（步行10-15分钟） 20-25": 23},
  "prosCons": {"pros": ["优点1", "优点2"], "cons": ["缺点1"]}
}`

// BuildOracleRequest renders the rubric and the property into a scoring request.
// Missing optional facts are rendered with an explicit inference marker.
func BuildOracleRequest(desc model.PropertyDescription, catalog *rubric.Catalog, params OracleParams) OracleRequest {
	var system strings.Builder
	system.WriteString(systemPreamble)
	system.WriteString(catalog.RenderAll())
	system.WriteString(systemRules)

	return OracleRequest{
		System:      system.String(),
		User:        describeProperty(desc),
		Model:       params.Model,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		JSONMode:    params.JSONMode,
	}
}

func describeProperty(desc model.PropertyDescription) string {
	renovation := notProvided
	if desc.Renovation != "" {
		renovation = desc.Renovation.Label()
		if renovation == "" {
			renovation = string(desc.Renovation)
		}
	}

	return fmt.Sprintf("请评估%s%s的%s小区。楼层：%s；朝向：%s；装修：%s；户型：%s；补充描述：%s",
		desc.City,
		desc.District,
		desc.Community,
		orNotProvided(desc.Floor),
		orNotProvided(desc.Orientation),
		renovation,
		desc.Layout,
		orNotProvided(desc.Description),
	)
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}
