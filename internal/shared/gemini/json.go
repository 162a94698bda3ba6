package gemini

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object in model answer")

// ExtractJSON returns the outermost {...} span of a model answer, dropping
// markdown fences and any prose around it.
func ExtractJSON(answer string) (string, error) {
	s := strings.TrimSpace(answer)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return s[start : end+1], nil
}

// LooseInt reads a JSON number or a quoted number.
func LooseInt(raw json.RawMessage) (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeConfidence reads values in (1, 100] as percentages and clamps
// the result to [0, 1].
func NormalizeConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
