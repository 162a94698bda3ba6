package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeCrypto Mode = "crypto"
	ModeFiat   Mode = "fiat"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusFailed    OrderStatus = "failed"
	StatusCancelled OrderStatus = "cancelled"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Order is one checkout handed to the payment gateway, keyed by the partner
// order id we generate.
type Order struct {
	PartnerOrderID string          `json:"partner_order_id"`
	UserID         uuid.UUID       `json:"user_id"`
	ListingID      *uuid.UUID      `json:"listing_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Mode           Mode            `json:"mode"`
	Status         OrderStatus     `json:"status"`
	RedirectURL    string          `json:"redirect_url,omitempty"`
	WidgetToken    string          `json:"widget_token,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate checks the fields a caller supplies.
func (o *Order) Validate() error {
	switch {
	case o.UserID == uuid.Nil:
		return ErrInvalidOrder
	case !o.Amount.IsPositive(), !o.Amount.Equal(o.Amount.Round(2)):
		return ErrInvalidOrder
	case !currencyRe.MatchString(o.Currency):
		return ErrInvalidOrder
	case o.Mode != ModeCrypto && o.Mode != ModeFiat:
		return ErrInvalidOrder
	}
	return nil
}

func (o *Order) IsFinal() bool {
	return o.Status != StatusPending
}

// Transition moves a pending order to a terminal status. Repeating the
// current status is not a change; leaving a terminal status is an error.
func (o *Order) Transition(to OrderStatus, reason string, now time.Time) (bool, error) {
	switch to {
	case StatusCompleted, StatusFailed, StatusCancelled:
	default:
		return false, ErrInvalidStatus
	}
	if o.Status == to {
		return false, nil
	}
	if o.IsFinal() {
		return false, ErrOrderFinalized
	}
	o.Status = to
	o.FailureReason = reason
	o.UpdatedAt = now
	return true, nil
}

// OrderStore persists orders. Create is idempotent on PartnerOrderID.
type OrderStore interface {
	Create(ctx context.Context, o *Order) (*Order, bool, error)
	Get(ctx context.Context, partnerOrderID string) (*Order, error)
	// Update applies fn inside one write transaction and persists only when
	// fn reports a change.
	Update(ctx context.Context, partnerOrderID string, fn func(o *Order) (bool, error)) (*Order, bool, error)
}

// Session is what the gateway returns for the client-side widget.
type Session struct {
	RedirectURL string `json:"redirect_url"`
	WidgetToken string `json:"widget_token"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, o *Order) (*Session, error)
}
