package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is one offer against a listing. Only IsWinning changes after creation.
type Bid struct {
	ID         uuid.UUID
	ListingID  uuid.UUID
	BidderID   uuid.UUID
	Amount     decimal.Decimal
	MaxAutoBid *decimal.Decimal
	CreatedAt  time.Time
	IsWinning  bool
}

func NewBid(id, listingID, bidderID uuid.UUID, amount decimal.Decimal, maxAutoBid *decimal.Decimal, createdAt time.Time) *Bid {
	return &Bid{
		ID:         id,
		ListingID:  listingID,
		BidderID:   bidderID,
		Amount:     amount,
		MaxAutoBid: maxAutoBid,
		CreatedAt:  createdAt,
	}
}
