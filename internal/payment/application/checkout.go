package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/payment/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

type CheckoutDTO struct {
	UserID    uuid.UUID
	ListingID *uuid.UUID
	Amount    decimal.Decimal
	Currency  string
	Mode      domain.Mode
}

// PaymentService journals every checkout before the gateway sees it, so a
// gateway outage leaves a failed order rather than no trace.
type PaymentService struct {
	store   domain.OrderStore
	gateway domain.Gateway
	newID   func() string
	now     func() time.Time
}

func NewPaymentService(store domain.OrderStore, gateway domain.Gateway, newID func() string, now func() time.Time) *PaymentService {
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	if now == nil {
		now = time.Now
	}
	return &PaymentService{store: store, gateway: gateway, newID: newID, now: now}
}

func (s *PaymentService) CreateCheckout(ctx context.Context, cmd CheckoutDTO) (*domain.Order, error) {
	now := s.now().UTC()
	order := &domain.Order{
		PartnerOrderID: s.newID(),
		UserID:         cmd.UserID,
		ListingID:      cmd.ListingID,
		Amount:         cmd.Amount,
		Currency:       strings.ToUpper(strings.TrimSpace(cmd.Currency)),
		Mode:           cmd.Mode,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if _, _, err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create checkout: journal order: %w", err)
	}

	session, err := s.gateway.CreateOrder(ctx, order)
	if err != nil {
		log.Error("Payment gateway rejected order",
			zap.String("partnerOrderID", order.PartnerOrderID),
			zap.Error(err),
		)
		_, _, uerr := s.store.Update(ctx, order.PartnerOrderID, func(o *domain.Order) (bool, error) {
			return o.Transition(domain.StatusFailed, err.Error(), s.now().UTC())
		})
		if uerr != nil {
			log.Error("Failed to mark order failed",
				zap.String("partnerOrderID", order.PartnerOrderID),
				zap.Error(uerr),
			)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	updated, _, err := s.store.Update(ctx, order.PartnerOrderID, func(o *domain.Order) (bool, error) {
		if o.RedirectURL == session.RedirectURL && o.WidgetToken == session.WidgetToken {
			return false, nil
		}
		o.RedirectURL = session.RedirectURL
		o.WidgetToken = session.WidgetToken
		o.UpdatedAt = s.now().UTC()
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout: store session: %w", err)
	}

	log.Info("Checkout created",
		zap.String("partnerOrderID", updated.PartnerOrderID),
		zap.String("userID", updated.UserID.String()),
		zap.String("amount", updated.Amount.String()),
		zap.String("currency", updated.Currency),
		zap.String("mode", string(updated.Mode)),
	)
	return updated, nil
}

// RecordEvent applies a widget callback. Repeating the current status is
// accepted without a write.
func (s *PaymentService) RecordEvent(ctx context.Context, partnerOrderID string, status domain.OrderStatus, reason string) (*domain.Order, error) {
	order, written, err := s.store.Update(ctx, partnerOrderID, func(o *domain.Order) (bool, error) {
		return o.Transition(status, reason, s.now().UTC())
	})
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			log.Warn("Payment event rejected",
				zap.String("partnerOrderID", partnerOrderID),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("record payment event %s: %w", partnerOrderID, err)
	}
	if written {
		log.Info("Payment order finalized",
			zap.String("partnerOrderID", partnerOrderID),
			zap.String("status", string(order.Status)),
		)
	}
	return order, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, partnerOrderID string) (*domain.Order, error) {
	order, err := s.store.Get(ctx, partnerOrderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", partnerOrderID, err)
	}
	return order, nil
}
