package postgres

import (
	"context"
	"errors"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

type WatchlistRepository struct {
	pool *pgxpool.Pool
}

func NewWatchlistRepository(pool *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{pool: pool}
}

// Add is a no-op when the pair is already watched.
func (r *WatchlistRepository) Add(ctx context.Context, userID, listingID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO watchlist (user_id, listing_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, listingID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return domain.ErrListingNotFound
	}
	return err
}

func (r *WatchlistRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND listing_id = $2`,
		userID, listingID,
	)
	return err
}

func (r *WatchlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Listing, error) {
	query := `
        SELECT l.id, l.item_id, l.seller_id, l.starting_price, l.current_price, l.min_increment, l.buyout_price,
            l.ends_at, l.auto_extend, l.extension_seconds, l.status, l.created_at, l.updated_at
        FROM watchlist w
        JOIN auction_listings l ON l.id = w.listing_id
        WHERE w.user_id = $1
        ORDER BY w.created_at DESC
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}
