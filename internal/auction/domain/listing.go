package domain

import (
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// ListingStatus is the lifecycle state of an auction listing.
type ListingStatus string

const (
	StatusActive    ListingStatus = "active"
	StatusEnded     ListingStatus = "ended"
	StatusCancelled ListingStatus = "cancelled"
	StatusSold      ListingStatus = "sold"
)

// DefaultMinIncrement applies when a listing has no increment configured.
var DefaultMinIncrement = decimal.NewFromInt(1)

// Listing is a single auction of one catalog item.
// CurrentPrice never drops below StartingPrice.
type Listing struct {
	ID              uuid.UUID
	ItemID          uuid.UUID
	SellerID        uuid.UUID
	StartingPrice   decimal.Decimal
	CurrentPrice    decimal.Decimal
	MinIncrement    decimal.Decimal
	BuyoutPrice     *decimal.Decimal
	EndsAt          time.Time
	AutoExtend      bool
	ExtensionWindow time.Duration
	Status          ListingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewListing(id, itemID, sellerID uuid.UUID, startingPrice, minIncrement decimal.Decimal,
	buyout *decimal.Decimal, endsAt time.Time, autoExtend bool, extensionWindow time.Duration, now time.Time) *Listing {
	return &Listing{
		ID:              id,
		ItemID:          itemID,
		SellerID:        sellerID,
		StartingPrice:   startingPrice,
		CurrentPrice:    startingPrice,
		MinIncrement:    minIncrement,
		BuyoutPrice:     buyout,
		EndsAt:          endsAt,
		AutoExtend:      autoExtend,
		ExtensionWindow: extensionWindow,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MoneyPlaces is the precision amounts are stored with.
const MoneyPlaces = 2

// IsMoney reports whether v fits the stored precision without rounding.
func IsMoney(v decimal.Decimal) bool {
	return v.Equal(v.Round(MoneyPlaces))
}

// Increment returns the configured increment, or DefaultMinIncrement when unset.
func (l *Listing) Increment() decimal.Decimal {
	if l.MinIncrement.IsPositive() {
		return l.MinIncrement
	}
	return DefaultMinIncrement
}

// MinimumBid is the lowest amount the next bid may carry.
func (l *Listing) MinimumBid() decimal.Decimal {
	return l.CurrentPrice.Add(l.Increment())
}

// IsOpen reports whether the listing still accepts bids at now. Status is
// stored, expiry is evaluated at read time.
func (l *Listing) IsOpen(now time.Time) bool {
	return l.Status == StatusActive && now.Before(l.EndsAt)
}

// PlaceBid validates a bid against the listing and applies it.
// Checks run in a fixed order: amount precision, minimum amount, end time,
// self bid, then status and auto-bid ceiling.
func (l *Listing) PlaceBid(bidderID uuid.UUID, amount decimal.Decimal, maxAutoBid *decimal.Decimal, now time.Time) (*Bid, error) {
	if !IsMoney(amount) || (maxAutoBid != nil && !IsMoney(*maxAutoBid)) {
		return nil, ErrInvalidAmount
	}

	minimum := l.MinimumBid()
	if amount.LessThan(minimum) {
		log.Warn("Bid rejected: amount below minimum",
			zap.String("listingID", l.ID.String()),
			zap.String("bidderID", bidderID.String()),
			zap.String("amount", amount.String()),
			zap.String("minimum", minimum.String()),
		)
		return nil, &InvalidBidError{Amount: amount, Minimum: minimum}
	}

	if !now.Before(l.EndsAt) {
		log.Warn("Bid rejected: auction ended",
			zap.String("listingID", l.ID.String()),
			zap.String("bidderID", bidderID.String()),
			zap.Time("endsAt", l.EndsAt),
		)
		return nil, ErrAuctionEnded
	}

	if bidderID == l.SellerID {
		log.Warn("Bid rejected: seller bidding on own listing",
			zap.String("listingID", l.ID.String()),
			zap.String("bidderID", bidderID.String()),
		)
		return nil, ErrSelfBid
	}

	if l.Status != StatusActive {
		log.Warn("Bid rejected: listing not active",
			zap.String("listingID", l.ID.String()),
			zap.String("status", string(l.Status)),
		)
		return nil, ErrAuctionNotActive
	}

	if maxAutoBid != nil && maxAutoBid.LessThan(amount) {
		return nil, ErrInvalidAutoBid
	}

	// anti-sniping
	if l.AutoExtend && l.ExtensionWindow > 0 && l.EndsAt.Sub(now) < l.ExtensionWindow {
		originalEnd := l.EndsAt
		l.EndsAt = now.Add(l.ExtensionWindow)
		log.Info("Auction time extended",
			zap.String("listingID", l.ID.String()),
			zap.Time("originalEndsAt", originalEnd),
			zap.Time("newEndsAt", l.EndsAt),
		)
	}

	l.CurrentPrice = amount
	l.UpdatedAt = now
	bid := NewBid(uuid.New(), l.ID, bidderID, amount, maxAutoBid, now)

	if l.BuyoutPrice != nil && !amount.LessThan(*l.BuyoutPrice) {
		l.Status = StatusSold
		bid.IsWinning = true
		log.Info("Buyout price reached",
			zap.String("listingID", l.ID.String()),
			zap.String("bidID", bid.ID.String()),
			zap.String("amount", amount.String()),
		)
	}

	return bid, nil
}

// Close finalizes an expired listing. The highest bid, if any, wins.
func (l *Listing) Close(highest *Bid, now time.Time) error {
	if l.Status != StatusActive {
		return ErrAuctionNotActive
	}
	if now.Before(l.EndsAt) {
		return ErrAuctionStillRunning
	}

	l.UpdatedAt = now
	if highest == nil {
		l.Status = StatusEnded
		log.Info("Auction ended without bids", zap.String("listingID", l.ID.String()))
		return nil
	}

	l.Status = StatusSold
	highest.IsWinning = true
	log.Info("Auction sold",
		zap.String("listingID", l.ID.String()),
		zap.String("winningBidID", highest.ID.String()),
		zap.String("finalPrice", l.CurrentPrice.String()),
	)
	return nil
}

// Cancel withdraws an active listing. Only its seller may do so.
func (l *Listing) Cancel(sellerID uuid.UUID, now time.Time) error {
	if sellerID != l.SellerID {
		return ErrNotSeller
	}
	if l.Status != StatusActive {
		log.Warn("Attempted to cancel listing that is not active",
			zap.String("listingID", l.ID.String()),
			zap.String("status", string(l.Status)),
		)
		return ErrAuctionNotActive
	}
	l.Status = StatusCancelled
	l.UpdatedAt = now
	return nil
}

// EffectiveStatus reports "ended" for active listings whose end time has
// passed but which the closer has not finalized yet.
func (l *Listing) EffectiveStatus(now time.Time) ListingStatus {
	if l.Status == StatusActive && !now.Before(l.EndsAt) {
		return StatusEnded
	}
	return l.Status
}
