package application

import (
	"context"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BidPlacedPayload is published after a bid commits.
type BidPlacedPayload struct {
	BidID        uuid.UUID       `json:"bid_id"`
	BidderID     uuid.UUID       `json:"bidder_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MinimumBid   decimal.Decimal `json:"minimum_bid"`
	EndsAt       time.Time       `json:"ends_at"`
	Status       string          `json:"status"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// ListingClosedPayload is published when a listing is finalized or cancelled.
type ListingClosedPayload struct {
	Status       string          `json:"status"`
	FinalPrice   decimal.Decimal `json:"final_price"`
	WinningBidID *uuid.UUID      `json:"winning_bid_id,omitempty"`
	WinnerID     *uuid.UUID      `json:"winner_id,omitempty"`
}

// publish never fails the caller: the write already committed.
func publish(ctx context.Context, publisher events.Publisher, t events.Type, listingID uuid.UUID, payload any) {
	if publisher == nil {
		return
	}
	evt, err := events.New(t, listingID, payload)
	if err != nil {
		log.Error("Failed to build event", zap.String("type", string(t)), zap.Error(err))
		return
	}
	if err := publisher.Publish(ctx, evt); err != nil {
		log.Warn("Failed to publish event",
			zap.String("type", string(t)),
			zap.String("listingID", listingID.String()),
			zap.Error(err),
		)
	}
}

func closedPayload(l *domain.Listing, winning *domain.Bid) ListingClosedPayload {
	p := ListingClosedPayload{Status: string(l.Status), FinalPrice: l.CurrentPrice}
	if winning != nil {
		p.WinningBidID = &winning.ID
		p.WinnerID = &winning.BidderID
	}
	return p
}
