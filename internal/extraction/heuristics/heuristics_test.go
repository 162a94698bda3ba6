package heuristics

import (
	"reflect"
	"testing"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/shopspring/decimal"
)

const listingPage = `1921 Morgan Silver Dollar, United States. Graded MS-65 by PCGS.
Previously sold for $1,250.00, now $980. Struck in 1921 at Philadelphia; compare
with the 1878 dollar graded AU 58 and a Canadian cent VG8. Shipping $5.`

func TestExtractStructuredData(t *testing.T) {
	got := ExtractStructuredData(listingPage)
	want := domain.StructuredData{
		Prices:        []string{"$1,250.00", "$980", "$5"},
		Years:         []string{"1921", "1878"},
		Grades:        []string{"MS65", "AU58", "VG8"},
		Denominations: []string{"dollar", "cent"},
		Countries:     []string{"United States", "Canada"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected structured data:\n got %+v\nwant %+v", got, want)
	}
}

func TestExtractStructuredDataCaps(t *testing.T) {
	got := ExtractStructuredData("$1 $2 $3 $4 $5 $6 $7 1800 1801 1802 1803 1804 1805 MS60 MS61 MS62 MS63")
	if len(got.Prices) != 5 || len(got.Years) != 5 || len(got.Grades) != 3 {
		t.Fatalf("caps not applied: %+v", got)
	}
	if got.Prices[0] != "$1" || got.Years[4] != "1804" {
		t.Fatalf("caps should keep first occurrences: %+v", got)
	}
}

func TestExtractStructuredDataNoMatches(t *testing.T) {
	got := ExtractStructuredData("nothing to see here")
	if got.Prices == nil || len(got.Prices)+len(got.Years)+len(got.Grades)+len(got.Denominations)+len(got.Countries) != 0 {
		t.Fatalf("expected empty, non-nil families, got %+v", got)
	}
}

func TestExtractBestYear(t *testing.T) {
	tests := []struct {
		in     []string
		want   int
		wantOK bool
	}{
		{in: []string{"1776", "1921", "2150"}, want: 1921, wantOK: true},
		{in: []string{"1792"}, want: 1792, wantOK: true},
		{in: []string{"2024", "1900"}, want: 2024, wantOK: true},
		{in: []string{"1791", "2025"}, wantOK: false},
		{in: nil, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ExtractBestYear(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractBestYear(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestExtractBestPrice(t *testing.T) {
	got, ok := ExtractBestPrice([]string{"$0", "$45.50", "$2,000,000"})
	if !ok || !got.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("expected 45.5, got %s (%v)", got, ok)
	}
	if _, ok := ExtractBestPrice([]string{"$0", "$1,000,000"}); ok {
		t.Fatal("bounds are exclusive")
	}
}

func TestExtractBestTitle(t *testing.T) {
	title, ok := ExtractBestTitle(domain.StructuredData{Years: []string{"1909"}, Denominations: []string{"half dollar"}})
	if !ok || title != "1909 Half Dollar" {
		t.Fatalf("expected 1909 Half Dollar, got %q", title)
	}
	if _, ok := ExtractBestTitle(domain.StructuredData{Years: []string{"1909"}}); ok {
		t.Fatal("title needs a denomination")
	}
	if _, ok := ExtractBestTitle(domain.StructuredData{Denominations: []string{"dime"}}); ok {
		t.Fatal("title needs a year")
	}
}

func allSignals() domain.StructuredData {
	return domain.StructuredData{
		Prices:        []string{"$10"},
		Years:         []string{"1921"},
		Grades:        []string{"MS65"},
		Denominations: []string{"dollar"},
		Countries:     []string{"United States"},
	}
}

func TestCalculateRealConfidence(t *testing.T) {
	aiConf := 0.3
	tests := []struct {
		name string
		ai   *domain.AIExtraction
		data domain.StructuredData
		want float64
	}{
		{name: "all signals, no ai", data: allSignals(), want: 0.95},
		{name: "all signals, ai 0.3", ai: &domain.AIExtraction{Confidence: &aiConf}, data: allSignals(), want: 0.625},
		{name: "nothing", want: 0.5},
		{name: "low ai confidence averages", ai: &domain.AIExtraction{Confidence: new(float64)}, want: 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateRealConfidence(tt.ai, tt.data); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateRealConfidenceCountsAIFields(t *testing.T) {
	name, grade, year := "Morgan Dollar", "MS63", 1881
	price := decimal.NewFromInt(90)
	ai := &domain.AIExtraction{Name: &name, Grade: &grade, Year: &year, Price: &price}
	if got := CalculateRealConfidence(ai, domain.StructuredData{}); got != 0.9 {
		t.Fatalf("expected 0.9 from AI fields alone, got %v", got)
	}
}

func TestCalculateBasicConfidence(t *testing.T) {
	if got := CalculateBasicConfidence("plain words"); got != 0.3 {
		t.Fatalf("expected floor 0.3, got %v", got)
	}
	long := make([]byte, 1200)
	for i := range long {
		long[i] = 'x'
	}
	rich := string(long) + " coin $5 1921 MS65"
	if got := CalculateBasicConfidence(rich); got != 0.8 {
		t.Fatalf("expected 0.8 with all five signals, got %v", got)
	}
	if got := CalculateBasicConfidence("numismatic $3"); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}
