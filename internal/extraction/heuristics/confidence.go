package heuristics

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
)

const (
	baseConfidence   = 0.5
	fieldWeight      = 0.1
	countryWeight    = 0.05
	minConfidence    = 0.1
	maxConfidence    = 1.0
	longContentRunes = 1000
)

var (
	anyYearRe = regexp.MustCompile(`\b\d{4}\b`)
	keywordRe = regexp.MustCompile(`(?i)coin|numismatic|grade`)
)

// CalculateRealConfidence scores an extraction from the signals present in
// either the AI answer or the heuristic matches. A reported AI confidence is
// averaged in with equal weight. The result is clamped to [0.1, 1.0]; with no
// AI confidence it never drops below 0.5.
func CalculateRealConfidence(ai *domain.AIExtraction, data domain.StructuredData) float64 {
	if ai == nil {
		ai = &domain.AIExtraction{}
	}

	score := baseConfidence
	if (ai.Name != nil && *ai.Name != "") || len(data.Denominations) > 0 {
		score += fieldWeight
	}
	if ai.Year != nil || len(data.Years) > 0 {
		score += fieldWeight
	}
	if ai.Price != nil || len(data.Prices) > 0 {
		score += fieldWeight
	}
	if (ai.Grade != nil && *ai.Grade != "") || len(data.Grades) > 0 {
		score += fieldWeight
	}
	if len(data.Countries) > 0 {
		score += countryWeight
	}

	if ai.Confidence != nil {
		score = (score + *ai.Confidence) / 2
	}
	return round4(clamp(score, minConfidence, maxConfidence))
}

// CalculateBasicConfidence scores raw content when no AI answer exists:
// 0.3 plus 0.1 per signal, capped at 0.9.
func CalculateBasicConfidence(content string) float64 {
	tenths := 3
	if utf8.RuneCountInString(content) > longContentRunes {
		tenths++
	}
	for _, present := range []bool{
		strings.ContainsRune(content, '$'),
		anyYearRe.MatchString(content),
		gradeRe.MatchString(content),
		keywordRe.MatchString(content),
	} {
		if present {
			tenths++
		}
	}
	if tenths > 9 {
		tenths = 9
	}
	return float64(tenths) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round4 keeps the sums of tenths exact (0.95, not 0.9500000000000001).
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
