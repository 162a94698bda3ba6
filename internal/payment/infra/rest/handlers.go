package rest

import (
	"context"
	"errors"

	"github.com/cristianortiz/numismaticMarket/internal/payment/application"
	"github.com/cristianortiz/numismaticMarket/internal/payment/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService is satisfied by *application.PaymentService.
type PaymentService interface {
	CreateCheckout(ctx context.Context, cmd application.CheckoutDTO) (*domain.Order, error)
	RecordEvent(ctx context.Context, partnerOrderID string, status domain.OrderStatus, reason string) (*domain.Order, error)
	GetOrder(ctx context.Context, partnerOrderID string) (*domain.Order, error)
}

type PaymentHandler struct {
	service PaymentService
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/payments/checkout", h.checkout)
	r.Post("/payments/:id/events", h.recordEvent)
	r.Get("/payments/:id", h.getOrder)
}

type checkoutRequest struct {
	UserID    uuid.UUID       `json:"user_id"`
	ListingID *uuid.UUID      `json:"listing_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Mode      domain.Mode     `json:"mode"`
}

type checkoutResponse struct {
	PartnerOrderID string             `json:"partner_order_id"`
	RedirectURL    string             `json:"redirect_url"`
	WidgetToken    string             `json:"widget_token"`
	Status         domain.OrderStatus `json:"status"`
}

type eventRequest struct {
	Status domain.OrderStatus `json:"status"`
	Reason string             `json:"reason"`
}

func (h *PaymentHandler) checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	order, err := h.service.CreateCheckout(c.UserContext(), application.CheckoutDTO{
		UserID:    req.UserID,
		ListingID: req.ListingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Mode:      req.Mode,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(checkoutResponse{
		PartnerOrderID: order.PartnerOrderID,
		RedirectURL:    order.RedirectURL,
		WidgetToken:    order.WidgetToken,
		Status:         order.Status,
	})
}

func (h *PaymentHandler) recordEvent(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	order, err := h.service.RecordEvent(c.UserContext(), c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(order)
}

func (h *PaymentHandler) getOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(order)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, domain.ErrOrderNotFound.Error())
	case errors.Is(err, domain.ErrOrderFinalized):
		return fiber.NewError(fiber.StatusConflict, domain.ErrOrderFinalized.Error())
	case errors.Is(err, domain.ErrGateway):
		return fiber.NewError(fiber.StatusBadGateway, domain.ErrGateway.Error())
	}
	return err
}
