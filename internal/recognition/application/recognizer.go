package application

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/heuristics"
	"github.com/cristianortiz/numismaticMarket/internal/recognition/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/gemini"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// VisionModel is the slice of *gemini.Client the recognizer needs.
type VisionModel interface {
	GenerateJSON(ctx context.Context, prompt string, images ...gemini.Image) (string, error)
}

type Recognizer struct {
	model VisionModel
	now   func() time.Time
}

// NewRecognizer accepts a nil model; every result is then a degraded default.
func NewRecognizer(model VisionModel, now func() time.Time) *Recognizer {
	if now == nil {
		now = time.Now
	}
	return &Recognizer{model: model, now: now}
}

const recognitionPrompt = `The first image is the obverse and the second the reverse of one coin.
Identify it and answer with a single JSON object:
{
  "name": string,
  "year": integer,
  "country": string,
  "denomination": string,
  "mintmark": string,
  "composition": string,
  "grade": string (Sheldon scale, e.g. "VF30"),
  "estimated_value": number (USD),
  "features": [string],
  "description": string,
  "confidence": number between 0 and 1
}
Use null for anything you cannot determine.`

type recognitionAnswer struct {
	Name           string          `json:"name"`
	Year           json.RawMessage `json:"year"`
	Country        *string         `json:"country"`
	Denomination   *string         `json:"denomination"`
	Mintmark       *string         `json:"mintmark"`
	Composition    *string         `json:"composition"`
	Grade          *string         `json:"grade"`
	EstimatedValue json.RawMessage `json:"estimated_value"`
	Features       []string        `json:"features"`
	Description    string          `json:"description"`
	Confidence     *float64        `json:"confidence"`
}

// Recognize identifies a coin from base64 front and back photos. Only input
// errors are returned; model failures yield a degraded analysis.
func (r *Recognizer) Recognize(ctx context.Context, frontB64, backB64 string) (*domain.CoinAnalysis, error) {
	if strings.TrimSpace(frontB64) == "" || strings.TrimSpace(backB64) == "" {
		return nil, domain.ErrMissingImage
	}
	front, err := DecodeImage(frontB64)
	if err != nil {
		return nil, fmt.Errorf("front image: %w", err)
	}
	back, err := DecodeImage(backB64)
	if err != nil {
		return nil, fmt.Errorf("back image: %w", err)
	}

	if r.model == nil {
		return r.fallback("", domain.ErrRecognizerUnavailable.Error()), nil
	}

	text, err := r.model.GenerateJSON(ctx, recognitionPrompt, front, back)
	if err != nil {
		log.Warn("Coin recognition call failed", zap.Error(err))
		return r.fallback("", err.Error()), nil
	}

	analysis, err := r.parse(text)
	if err != nil {
		log.Warn("Coin recognition answer unusable, falling back to text heuristics", zap.Error(err))
		return r.fallback(text, err.Error()), nil
	}

	log.Info("Coin recognized",
		zap.String("name", analysis.Name),
		zap.Int("year", analysis.Year),
		zap.Float64("confidence", analysis.Confidence),
	)
	return analysis, nil
}

func (r *Recognizer) parse(text string) (*domain.CoinAnalysis, error) {
	raw, err := gemini.ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var ans recognitionAnswer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		return nil, fmt.Errorf("decode recognition answer: %w", err)
	}

	now := r.now()
	a := &domain.CoinAnalysis{
		Name:         strings.TrimSpace(ans.Name),
		Year:         now.Year(),
		Country:      nonEmpty(ans.Country),
		Denomination: nonEmpty(ans.Denomination),
		Mintmark:     nonEmpty(ans.Mintmark),
		Composition:  nonEmpty(ans.Composition),
		Grade:        nonEmpty(ans.Grade),
		Features:     ans.Features,
		Description:  ans.Description,
		RecognizedAt: now.UTC(),
	}
	if a.Name == "" {
		a.Name = domain.UnknownCoinName
	}
	if a.Features == nil {
		a.Features = []string{}
	}
	if year, ok := gemini.LooseInt(ans.Year); ok && year > 0 {
		a.Year = year
	}
	if v, err := heuristics.ParsePrice(strings.Trim(string(ans.EstimatedValue), `"`)); err == nil && !v.IsNegative() {
		a.EstimatedValue = &v
	}
	if ans.Confidence != nil {
		a.Confidence = gemini.NormalizeConfidence(*ans.Confidence)
	}
	return a, nil
}

// fallback reads what it can from unstructured model text and fills the rest
// with defaults.
func (r *Recognizer) fallback(text, reason string) *domain.CoinAnalysis {
	now := r.now()
	data := heuristics.ExtractStructuredData(text)
	a := &domain.CoinAnalysis{
		Name:           domain.UnknownCoinName,
		Year:           now.Year(),
		Features:       []string{},
		Confidence:     heuristics.CalculateBasicConfidence(text),
		Degraded:       true,
		DegradedReason: reason,
		RecognizedAt:   now.UTC(),
	}
	if title, ok := heuristics.ExtractBestTitle(data); ok {
		a.Name = title
	}
	if year, ok := heuristics.ExtractBestYear(data.Years); ok {
		a.Year = year
	}
	if price, ok := heuristics.ExtractBestPrice(data.Prices); ok {
		a.EstimatedValue = &price
	}
	if len(data.Grades) > 0 {
		a.Grade = &data.Grades[0]
	}
	if len(data.Denominations) > 0 {
		a.Denomination = &data.Denominations[0]
	}
	if len(data.Countries) > 0 {
		a.Country = &data.Countries[0]
	}
	return a
}

// DecodeImage accepts raw base64 or a data URL and sniffs the image type.
func DecodeImage(b64 string) (gemini.Image, error) {
	s := strings.TrimSpace(b64)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil || len(data) == 0 {
		return gemini.Image{}, domain.ErrInvalidImage
	}

	switch http.DetectContentType(data) {
	case "image/jpeg":
		return gemini.Image{Format: "jpeg", Data: data}, nil
	case "image/png":
		return gemini.Image{Format: "png", Data: data}, nil
	case "image/webp":
		return gemini.Image{Format: "webp", Data: data}, nil
	}
	return gemini.Image{}, domain.ErrInvalidImage
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
