package rest

import (
	"context"
	"errors"

	"github.com/cristianortiz/numismaticMarket/internal/recognition/domain"
	"github.com/gofiber/fiber/v2"
)

type Recognizer interface {
	Recognize(ctx context.Context, frontB64, backB64 string) (*domain.CoinAnalysis, error)
}

type RecognitionHandler struct {
	recognizer Recognizer
}

func NewRecognitionHandler(recognizer Recognizer) *RecognitionHandler {
	return &RecognitionHandler{recognizer: recognizer}
}

func (h *RecognitionHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/recognitions", h.recognize)
}

type recognizeRequest struct {
	FrontImage string `json:"front_image"`
	BackImage  string `json:"back_image"`
}

func (h *RecognitionHandler) recognize(c *fiber.Ctx) error {
	var req recognizeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	analysis, err := h.recognizer.Recognize(c.UserContext(), req.FrontImage, req.BackImage)
	if errors.Is(err, domain.ErrMissingImage) || errors.Is(err, domain.ErrInvalidImage) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(analysis)
}
