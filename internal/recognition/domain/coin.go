package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCoinName names a coin the model could not identify.
const UnknownCoinName = "Unknown Coin"

// CoinAnalysis is the result of recognizing a coin from its two faces.
// Name and Year are always set; when the model answer was unusable they hold
// defaults and Degraded is true.
type CoinAnalysis struct {
	Name           string           `json:"name"`
	Year           int              `json:"year"`
	Country        *string          `json:"country,omitempty"`
	Denomination   *string          `json:"denomination,omitempty"`
	Mintmark       *string          `json:"mintmark,omitempty"`
	Composition    *string          `json:"composition,omitempty"`
	Grade          *string          `json:"grade,omitempty"`
	EstimatedValue *decimal.Decimal `json:"estimated_value,omitempty"`
	Features       []string         `json:"features"`
	Description    string           `json:"description,omitempty"`
	Confidence     float64          `json:"confidence"`
	Degraded       bool             `json:"degraded"`
	DegradedReason string           `json:"degraded_reason,omitempty"`
	RecognizedAt   time.Time        `json:"recognized_at"`
}
