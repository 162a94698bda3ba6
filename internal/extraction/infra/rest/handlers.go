package rest

import (
	"context"
	"errors"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/gofiber/fiber/v2"
)

// Extractor is satisfied by *application.Extractor.
type Extractor interface {
	Extract(ctx context.Context, url, content string) (*domain.ExtractedCoinRecord, error)
}

type ExtractionHandler struct {
	extractor Extractor
}

func NewExtractionHandler(extractor Extractor) *ExtractionHandler {
	return &ExtractionHandler{extractor: extractor}
}

func (h *ExtractionHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/extractions", h.extract)
}

type extractRequest struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

func (h *ExtractionHandler) extract(c *fiber.Ctx) error {
	var req extractRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	record, err := h.extractor.Extract(c.UserContext(), req.URL, req.Content)
	switch {
	case errors.Is(err, domain.ErrMissingURL):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrFetchFailed):
		return fiber.NewError(fiber.StatusBadGateway, domain.ErrFetchFailed.Error())
	case err != nil:
		return err
	}
	return c.JSON(record)
}
