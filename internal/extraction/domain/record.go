package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Source values for ExtractedCoinRecord.Source.
const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

// StructuredData holds raw regex matches in document order. Every slice may
// be empty.
type StructuredData struct {
	Prices        []string `json:"prices"`
	Years         []string `json:"years"`
	Grades        []string `json:"grades"`
	Denominations []string `json:"denominations"`
	Countries     []string `json:"countries"`
}

// AIExtraction is what the analyzer managed to read out of its model's answer.
// Absent fields stay nil.
type AIExtraction struct {
	Name       *string          `json:"name,omitempty"`
	Year       *int             `json:"year,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Grade      *string          `json:"grade,omitempty"`
	Confidence *float64         `json:"confidence,omitempty"`
}

type RawData struct {
	AI        *AIExtraction  `json:"ai,omitempty"`
	Heuristic StructuredData `json:"heuristic"`
}

// ExtractedCoinRecord is the result of one extraction. Fields are
// independently optional; Confidence is always within [0.1, 1.0].
type ExtractedCoinRecord struct {
	Name           *string          `json:"name,omitempty"`
	Year           *int             `json:"year,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Grade          *string          `json:"grade,omitempty"`
	Denomination   *string          `json:"denomination,omitempty"`
	Country        *string          `json:"country,omitempty"`
	Confidence     float64          `json:"confidence"`
	SourceURL      string           `json:"source_url"`
	ExtractedAt    time.Time        `json:"extracted_at"`
	Raw            RawData          `json:"raw"`
	Source         string           `json:"source"`
	Degraded       bool             `json:"degraded"`
	DegradedReason string           `json:"degraded_reason,omitempty"`
}

// Analyzer asks a language model to read coin fields out of page text.
type Analyzer interface {
	Analyze(ctx context.Context, url, content string) (*AIExtraction, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// RecordCache stores finished records by source URL and the inline content
// they were built from. Fetched pages are cached with empty content.
type RecordCache interface {
	Get(ctx context.Context, url, content string) (*ExtractedCoinRecord, bool, error)
	Set(ctx context.Context, url, content string, record *ExtractedCoinRecord) error
}
