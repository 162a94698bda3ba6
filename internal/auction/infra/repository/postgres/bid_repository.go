package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const bidColumns = `id, listing_id, bidder_id, amount, max_auto_bid, is_winning, created_at`

// BidRepository implements domain.BidRepository
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func scanBid(row scanner) (*domain.Bid, error) {
	b := &domain.Bid{}
	var ceiling decimal.NullDecimal
	err := row.Scan(
		&b.ID,
		&b.ListingID,
		&b.BidderID,
		&b.Amount,
		&ceiling,
		&b.IsWinning,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ceiling.Valid {
		b.MaxAutoBid = &ceiling.Decimal
	}
	return b, nil
}

func collectBids(rows pgx.Rows) ([]*domain.Bid, error) {
	defer rows.Close()
	bids := []*domain.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// Save only inserts; the listing update happens in the same tx from the use case.
func (r *BidRepository) Save(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, listing_id, bidder_id, amount, max_auto_bid, is_winning, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.ListingID,
		bid.BidderID,
		bid.Amount,
		nullDecimal(bid.MaxAutoBid),
		bid.IsWinning,
		bid.CreatedAt,
	)
	return err
}

func (r *BidRepository) GetByListing(ctx context.Context, listingID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1
        ORDER BY amount DESC, created_at ASC
    `
	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	return collectBids(rows)
}

func (r *BidRepository) GetByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE bidder_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, query, bidderID)
	if err != nil {
		return nil, err
	}
	return collectBids(rows)
}

func (r *BidRepository) GetHighest(ctx context.Context, tx pgx.Tx, listingID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1
        ORDER BY amount DESC, created_at ASC
        LIMIT 1
    `
	b, err := scanBid(tx.QueryRow(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *BidRepository) MarkWinning(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE bids SET is_winning = TRUE WHERE id = $1`, bidID)
	return err
}

func (r *BidRepository) SummarizeSince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	var count int64
	var volume decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM bids WHERE created_at >= $1`,
		since,
	).Scan(&count, &volume)
	return count, volume, err
}
