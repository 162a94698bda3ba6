package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestValidate(t *testing.T) {
	valid := Order{UserID: uuid.New(), Amount: decimal.NewFromInt(10), Currency: "USD", Mode: ModeFiat}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]func(o *Order){
		"no user":        func(o *Order) { o.UserID = uuid.Nil },
		"zero amount":    func(o *Order) { o.Amount = decimal.Zero },
		"sub-cent":       func(o *Order) { o.Amount = decimal.RequireFromString("10.005") },
		"lower currency": func(o *Order) { o.Currency = "usd" },
		"long currency":  func(o *Order) { o.Currency = "USDT" },
		"unknown mode":   func(o *Order) { o.Mode = "barter" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			o := valid
			mutate(&o)
			if err := o.Validate(); !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	now := time.Now()
	o := &Order{Status: StatusPending}

	if _, err := o.Transition(StatusPending, "", now); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("pending is not a valid target, got %v", err)
	}
	changed, err := o.Transition(StatusCompleted, "", now)
	if err != nil || !changed || o.Status != StatusCompleted {
		t.Fatalf("expected completed, got %v %v %s", changed, err, o.Status)
	}
	changed, err = o.Transition(StatusCompleted, "", now)
	if err != nil || changed {
		t.Fatalf("repeat should be a no-op, got %v %v", changed, err)
	}
	if _, err := o.Transition(StatusCancelled, "", now); !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("expected ErrOrderFinalized, got %v", err)
	}
}
