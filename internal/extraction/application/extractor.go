package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/extraction/heuristics"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Extractor turns a listing page into an ExtractedCoinRecord. The analyzer and
// cache are optional; without an analyzer every record is heuristic and
// marked degraded.
type Extractor struct {
	fetcher  domain.PageFetcher
	analyzer domain.Analyzer
	cache    domain.RecordCache
	now      func() time.Time
}

func NewExtractor(fetcher domain.PageFetcher, analyzer domain.Analyzer, cache domain.RecordCache, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{fetcher: fetcher, analyzer: analyzer, cache: cache, now: now}
}

// Extract fetches url when content is empty. AI and cache failures never
// fail the call; only a missing url or an unfetchable page do.
func (e *Extractor) Extract(ctx context.Context, url, content string) (*domain.ExtractedCoinRecord, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.ErrMissingURL
	}

	inline := content
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, url, inline)
		if err != nil {
			log.Warn("Extraction cache read failed", zap.String("url", url), zap.Error(err))
		} else if ok {
			log.Debug("Extraction cache hit", zap.String("url", url))
			return cached, nil
		}
	}

	if content == "" {
		if e.fetcher == nil {
			return nil, domain.ErrFetchFailed
		}
		fetched, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			log.Warn("Failed to fetch page", zap.String("url", url), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		content = fetched
	}

	structured := heuristics.ExtractStructuredData(content)
	record := &domain.ExtractedCoinRecord{
		SourceURL:   url,
		ExtractedAt: e.now().UTC(),
		Raw:         domain.RawData{Heuristic: structured},
	}

	ai, aiErr := e.analyze(ctx, url, content)
	if aiErr != nil {
		log.Warn("AI extraction unavailable, using heuristics",
			zap.String("url", url),
			zap.Error(aiErr),
		)
		fillFromHeuristics(record, structured)
		record.Confidence = heuristics.CalculateBasicConfidence(content)
		record.Source = domain.SourceHeuristic
		record.Degraded = true
		record.DegradedReason = aiErr.Error()
	} else {
		record.Raw.AI = ai
		fillFromHeuristics(record, structured)
		// AI fields win over heuristic ones
		if ai.Name != nil && *ai.Name != "" {
			record.Name = ai.Name
		}
		if ai.Year != nil {
			record.Year = ai.Year
		}
		if ai.Price != nil {
			record.Price = ai.Price
		}
		if ai.Grade != nil && *ai.Grade != "" {
			record.Grade = ai.Grade
		}
		record.Confidence = heuristics.CalculateRealConfidence(ai, structured)
		record.Source = domain.SourceAI
	}

	log.Info("Extraction completed",
		zap.String("url", url),
		zap.String("source", record.Source),
		zap.Float64("confidence", record.Confidence),
		zap.Bool("degraded", record.Degraded),
	)

	// degraded records are not cached so a recovered analyzer gets another try
	if e.cache != nil && !record.Degraded {
		if err := e.cache.Set(ctx, url, inline, record); err != nil {
			log.Warn("Extraction cache write failed", zap.String("url", url), zap.Error(err))
		}
	}
	return record, nil
}

func (e *Extractor) analyze(ctx context.Context, url, content string) (*domain.AIExtraction, error) {
	if e.analyzer == nil {
		return nil, domain.ErrAIUnavailable
	}
	ai, err := e.analyzer.Analyze(ctx, url, content)
	if err != nil {
		return nil, err
	}
	if ai == nil {
		return nil, errors.New("analyzer returned no result")
	}
	return ai, nil
}

func fillFromHeuristics(record *domain.ExtractedCoinRecord, data domain.StructuredData) {
	if title, ok := heuristics.ExtractBestTitle(data); ok {
		record.Name = &title
	}
	if year, ok := heuristics.ExtractBestYear(data.Years); ok {
		record.Year = &year
	}
	if price, ok := heuristics.ExtractBestPrice(data.Prices); ok {
		record.Price = &price
	}
	if len(data.Grades) > 0 {
		grade := data.Grades[0]
		record.Grade = &grade
	}
	if len(data.Denominations) > 0 {
		d := data.Denominations[0]
		record.Denomination = &d
	}
	if len(data.Countries) > 0 {
		c := data.Countries[0]
		record.Country = &c
	}
}
