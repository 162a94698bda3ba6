package heuristics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinPlausibleYear = 1792
	MaxPlausibleYear = 2024
)

var maxPlausiblePrice = decimal.NewFromInt(1_000_000)

var titleCaser = cases.Title(language.English)

// The Best* reducers are positional: they return the first plausible
// candidate in document order, not the most relevant one.

// ExtractBestYear returns the first year within [MinPlausibleYear, MaxPlausibleYear].
func ExtractBestYear(years []string) (int, bool) {
	for _, y := range years {
		n, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			continue
		}
		if n >= MinPlausibleYear && n <= MaxPlausibleYear {
			return n, true
		}
	}
	return 0, false
}

// ExtractBestPrice returns the first price strictly between 0 and 1,000,000.
func ExtractBestPrice(prices []string) (decimal.Decimal, bool) {
	for _, p := range prices {
		v, err := ParsePrice(p)
		if err != nil {
			continue
		}
		if v.IsPositive() && v.LessThan(maxPlausiblePrice) {
			return v, true
		}
	}
	return decimal.Zero, false
}

// ParsePrice reads "$1,234.50" style amounts.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	return decimal.NewFromString(cleaned)
}

// ExtractBestTitle builds "<year> <Denomination>" and reports false unless
// both a plausible year and a denomination were found.
func ExtractBestTitle(data domain.StructuredData) (string, bool) {
	year, ok := ExtractBestYear(data.Years)
	if !ok || len(data.Denominations) == 0 {
		return "", false
	}
	return fmt.Sprintf("%d %s", year, titleCaser.String(data.Denominations[0])), true
}
