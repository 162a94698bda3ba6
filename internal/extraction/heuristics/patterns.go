// Package heuristics reads candidate coin fields out of free text with
// regular expressions. Nothing here fails: no match means an empty result.
package heuristics

import (
	"regexp"
	"strings"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
)

const (
	maxPrices        = 5
	maxYears         = 5
	maxGrades        = 3
	maxDenominations = 3
	maxCountries     = 3
)

var (
	priceRe = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	yearRe  = regexp.MustCompile(`\b(1[7-9]\d{2}|20\d{2})\b`)
	// longer codes first so VG is not read as G
	gradeRe        = regexp.MustCompile(`\b(MS|AU|XF|VF|VG|AG|PR|F|G)[-\s]?(\d{1,2})\b`)
	denominationRe = regexp.MustCompile(`(?i)\b(half dollar|cent|nickel|dime|quarter|dollar|eagle|penny)s?\b`)
	countryRe      = regexp.MustCompile(`(?i)\b(united states|usa|american|canada|canadian|mexico|mexican|great britain|united kingdom|british|england|france|french|germany|german|spain|spanish|italy|italian|china|chinese|japan|japanese|russia|russian|australia|australian|india|indian)\b`)
)

var countryNames = map[string]string{
	"united states":  "United States",
	"usa":            "United States",
	"american":       "United States",
	"canada":         "Canada",
	"canadian":       "Canada",
	"mexico":         "Mexico",
	"mexican":        "Mexico",
	"great britain":  "Great Britain",
	"united kingdom": "Great Britain",
	"british":        "Great Britain",
	"england":        "Great Britain",
	"france":         "France",
	"french":         "France",
	"germany":        "Germany",
	"german":         "Germany",
	"spain":          "Spain",
	"spanish":        "Spain",
	"italy":          "Italy",
	"italian":        "Italy",
	"china":          "China",
	"chinese":        "China",
	"japan":          "Japan",
	"japanese":       "Japan",
	"russia":         "Russia",
	"russian":        "Russia",
	"australia":      "Australia",
	"australian":     "Australia",
	"india":          "India",
	"indian":         "India",
}

// ExtractStructuredData runs the five pattern families over content
// independently. Each family keeps distinct matches in first-seen order, up
// to its cap.
func ExtractStructuredData(content string) domain.StructuredData {
	return domain.StructuredData{
		Prices: collect(priceRe, content, maxPrices, func(m []string) string { return m[0] }),
		Years:  collect(yearRe, content, maxYears, func(m []string) string { return m[1] }),
		Grades: collect(gradeRe, content, maxGrades, func(m []string) string { return m[1] + m[2] }),
		Denominations: collect(denominationRe, content, maxDenominations, func(m []string) string {
			return strings.ToLower(m[1])
		}),
		Countries: collect(countryRe, content, maxCountries, func(m []string) string {
			return countryNames[strings.ToLower(m[1])]
		}),
	}
}

func collect(re *regexp.Regexp, content string, limit int, normalize func([]string) string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		v := normalize(m)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
