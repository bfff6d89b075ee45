package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedAny  = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
)

// ExtractJSON returns the JSON object carried by AI output that may be:
// - Pure JSON
// - JSON wrapped in markdown code blocks (```json ... ```)
// - JSON with surrounding text
func ExtractJSON(input string) ([]byte, error) {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if s == "" {
		return nil, fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	if extracted := extractFromMarkdown(s); extracted != "" && json.Valid([]byte(extracted)) {
		return []byte(extracted), nil
	}

	if extracted := extractJSONFromText(s); extracted != "" && json.Valid([]byte(extracted)) {
		return []byte(extracted), nil
	}

	return nil, fmt.Errorf("failed to parse JSON from input: %s", truncateString(s, 100))
}

// extractFromMarkdown extracts JSON from markdown code blocks
// Supports: ```json {...} ```, ```{...}```, or ```\n{...}\n```
func extractFromMarkdown(input string) string {
	if matches := fencedJSON.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	if matches := fencedAny.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds the first balanced JSON object in surrounding text
func extractJSONFromText(input string) string {
	for offset := 0; offset < len(input); {
		start := strings.IndexByte(input[offset:], '{')
		if start < 0 {
			return ""
		}
		start += offset
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" && json.Valid([]byte(extracted)) {
			return extracted
		}
		offset = start + 1
	}
	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// truncateString truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
