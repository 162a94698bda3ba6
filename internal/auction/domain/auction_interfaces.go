package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	// GetByIDForUpdate locks the row for the rest of tx.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Listing, error)
	// Save writes price, end time and status, but only while the stored
	// current price still equals expectedPrice; otherwise ErrConcurrentBid.
	Save(ctx context.Context, tx pgx.Tx, listing *Listing, expectedPrice decimal.Decimal) error
	GetActive(ctx context.Context, now time.Time) ([]*Listing, error)
	GetExpiredActive(ctx context.Context, now time.Time, limit int) ([]*Listing, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
	CountEndingBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type BidRepository interface {
	Save(ctx context.Context, tx pgx.Tx, bid *Bid) error
	GetByListing(ctx context.Context, listingID uuid.UUID) ([]*Bid, error)
	GetByBidder(ctx context.Context, bidderID uuid.UUID) ([]*Bid, error)
	// GetHighest returns nil, nil when the listing has no bids.
	GetHighest(ctx context.Context, tx pgx.Tx, listingID uuid.UUID) (*Bid, error)
	MarkWinning(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error
	SummarizeSince(ctx context.Context, since time.Time) (count int64, volume decimal.Decimal, err error)
}

type WatchlistRepository interface {
	Add(ctx context.Context, userID, listingID uuid.UUID) error
	Remove(ctx context.Context, userID, listingID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Listing, error)
}
