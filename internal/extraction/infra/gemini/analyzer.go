// Package gemini adapts the shared Gemini client to the extraction Analyzer.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/extraction/heuristics"
	"github.com/cristianortiz/numismaticMarket/internal/shared/gemini"
	"github.com/shopspring/decimal"
)

const maxPromptContent = 20000

// Generator is the slice of *gemini.Client the analyzer needs.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, images ...gemini.Image) (string, error)
}

type Analyzer struct {
	gen Generator
}

func NewAnalyzer(gen Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

const promptTemplate = `You are a numismatic cataloguer. Read the listing page below and return a
single JSON object with these optional fields:
  "name" (string, the coin's common name),
  "year" (integer mint year),
  "price" (number, asking or sold price in USD),
  "grade" (string, Sheldon grade such as "MS65"),
  "confidence" (number between 0 and 1).
Omit a field you cannot determine. Do not add any other text.

Source URL: %s

Page content:
%s`

type answer struct {
	Name       *string         `json:"name"`
	Year       json.RawMessage `json:"year"`
	Price      json.RawMessage `json:"price"`
	Grade      *string         `json:"grade"`
	Confidence *float64        `json:"confidence"`
}

func (a *Analyzer) Analyze(ctx context.Context, url, content string) (*domain.AIExtraction, error) {
	text, err := a.gen.GenerateJSON(ctx, fmt.Sprintf(promptTemplate, url, truncate(content, maxPromptContent)))
	if err != nil {
		return nil, err
	}
	return ParseAnswer(text)
}

// ParseAnswer decodes a model answer, accepting numbers or strings for year
// and price. Malformed fields are dropped, not fatal.
func ParseAnswer(text string) (*domain.AIExtraction, error) {
	raw, err := gemini.ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var ans answer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnparseableJSON, err)
	}

	out := &domain.AIExtraction{}
	if ans.Name != nil && strings.TrimSpace(*ans.Name) != "" {
		name := strings.TrimSpace(*ans.Name)
		out.Name = &name
	}
	if ans.Grade != nil && strings.TrimSpace(*ans.Grade) != "" {
		grade := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(*ans.Grade), " ", ""))
		out.Grade = &grade
	}
	if year, ok := gemini.LooseInt(ans.Year); ok {
		out.Year = &year
	}
	if price, ok := parsePrice(ans.Price); ok {
		out.Price = &price
	}
	if ans.Confidence != nil {
		c := gemini.NormalizeConfidence(*ans.Confidence)
		out.Confidence = &c
	}
	return out, nil
}

func parsePrice(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	price, err := heuristics.ParsePrice(s)
	if err != nil || price.IsNegative() {
		return decimal.Zero, false
	}
	return price, true
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes])
}
