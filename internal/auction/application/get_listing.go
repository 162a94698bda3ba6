package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingDTO exposes listing state to REST and websocket clients.
type ListingDTO struct {
	ID            uuid.UUID        `json:"id"`
	ItemID        uuid.UUID        `json:"item_id"`
	SellerID      uuid.UUID        `json:"seller_id"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	MinIncrement  decimal.Decimal  `json:"min_increment"`
	MinimumBid    decimal.Decimal  `json:"minimum_bid"`
	BuyoutPrice   *decimal.Decimal `json:"buyout_price,omitempty"`
	EndsAt        time.Time        `json:"ends_at"`
	AutoExtend    bool             `json:"auto_extend"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type BidDTO struct {
	ID         uuid.UUID        `json:"id"`
	ListingID  uuid.UUID        `json:"listing_id"`
	BidderID   uuid.UUID        `json:"bidder_id"`
	Amount     decimal.Decimal  `json:"amount"`
	MaxAutoBid *decimal.Decimal `json:"max_auto_bid,omitempty"`
	IsWinning  bool             `json:"is_winning"`
	CreatedAt  time.Time        `json:"created_at"`
}

type StatsDTO struct {
	ActiveAuctions  int64           `json:"active_auctions"`
	EndingWithin24h int64           `json:"ending_within_24h"`
	Bids24h         int64           `json:"total_bids_24h"`
	BidVolume24h    decimal.Decimal `json:"bid_volume_24h"`
}

func ToListingDTO(l *domain.Listing, now time.Time) ListingDTO {
	return ListingDTO{
		ID:            l.ID,
		ItemID:        l.ItemID,
		SellerID:      l.SellerID,
		StartingPrice: l.StartingPrice,
		CurrentPrice:  l.CurrentPrice,
		MinIncrement:  l.Increment(),
		MinimumBid:    l.MinimumBid(),
		BuyoutPrice:   l.BuyoutPrice,
		EndsAt:        l.EndsAt,
		AutoExtend:    l.AutoExtend,
		Status:        string(l.EffectiveStatus(now)),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func ToBidDTO(b *domain.Bid) BidDTO {
	return BidDTO{
		ID:         b.ID,
		ListingID:  b.ListingID,
		BidderID:   b.BidderID,
		Amount:     b.Amount,
		MaxAutoBid: b.MaxAutoBid,
		IsWinning:  b.IsWinning,
		CreatedAt:  b.CreatedAt,
	}
}

func toListingDTOs(listings []*domain.Listing, now time.Time) []ListingDTO {
	out := make([]ListingDTO, 0, len(listings))
	for _, l := range listings {
		out = append(out, ToListingDTO(l, now))
	}
	return out
}

func toBidDTOs(bids []*domain.Bid) []BidDTO {
	out := make([]BidDTO, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidDTO(b))
	}
	return out
}

// AuctionQueries holds the read-only auction operations. Empty results are
// empty slices, never errors.
type AuctionQueries struct {
	listingRepo domain.ListingRepository
	bidRepo     domain.BidRepository
	now         func() time.Time
}

func NewAuctionQueries(listingRepo domain.ListingRepository, bidRepo domain.BidRepository, now func() time.Time) *AuctionQueries {
	if now == nil {
		now = time.Now
	}
	return &AuctionQueries{listingRepo: listingRepo, bidRepo: bidRepo, now: now}
}

// GetActiveAuctions returns open listings, soonest ending first.
func (q *AuctionQueries) GetActiveAuctions(ctx context.Context) ([]ListingDTO, error) {
	now := q.now()
	listings, err := q.listingRepo.GetActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("get active auctions: %w", err)
	}
	return toListingDTOs(listings, now), nil
}

func (q *AuctionQueries) GetAuctionByID(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	l, err := q.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get auction %s: %w", id, err)
	}
	dto := ToListingDTO(l, q.now())
	return &dto, nil
}

// GetBidHistory orders by amount, highest first, not by time.
func (q *AuctionQueries) GetBidHistory(ctx context.Context, listingID uuid.UUID) ([]BidDTO, error) {
	bids, err := q.bidRepo.GetByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get bid history %s: %w", listingID, err)
	}
	return toBidDTOs(bids), nil
}

// GetUserBids returns a bidder's bids, newest first.
func (q *AuctionQueries) GetUserBids(ctx context.Context, userID uuid.UUID) ([]BidDTO, error) {
	bids, err := q.bidRepo.GetByBidder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user bids %s: %w", userID, err)
	}
	return toBidDTOs(bids), nil
}

// GetAuctionStats runs independent aggregate queries; the numbers are not a
// consistent snapshot.
func (q *AuctionQueries) GetAuctionStats(ctx context.Context) (*StatsDTO, error) {
	now := q.now()
	active, err := q.listingRepo.CountActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("auction stats: active: %w", err)
	}
	ending, err := q.listingRepo.CountEndingBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("auction stats: ending soon: %w", err)
	}
	count, volume, err := q.bidRepo.SummarizeSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("auction stats: bids: %w", err)
	}

	return &StatsDTO{
		ActiveAuctions:  active,
		EndingWithin24h: ending,
		Bids24h:         count,
		BidVolume24h:    volume,
	}, nil
}
