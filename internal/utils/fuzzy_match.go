package utils

import (
	"strings"
)

// districtSuffixes are administrative suffixes dropped before comparing district names
var districtSuffixes = []string{"新区", "区", "县", "市", " district"}

// NormalizeDistrict reduces a district name to a comparable form:
// lowercase, trimmed, inner spaces removed, administrative suffix dropped
func NormalizeDistrict(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range districtSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	return strings.ReplaceAll(s, " ", "")
}

// FuzzyMatchDistrict reports whether the search term names the district
// identified by code and display name
func FuzzyMatchDistrict(searchTerm, code, name string) bool {
	term := NormalizeDistrict(searchTerm)
	if term == "" {
		return false
	}

	// Exact match on code or name
	if term == NormalizeDistrict(code) || term == NormalizeDistrict(name) {
		return true
	}

	// Term carries a city prefix, e.g. "宁波市鄞州区"
	base := NormalizeDistrict(name)
	if base != "" && strings.HasSuffix(term, base) {
		return true
	}

	// Pinyin spelled with a trailing "qu", e.g. "yinzhouqu"
	return strings.TrimSuffix(term, "qu") == NormalizeDistrict(code)
}
