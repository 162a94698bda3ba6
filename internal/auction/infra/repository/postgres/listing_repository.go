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

const listingColumns = `id, item_id, seller_id, starting_price, current_price, min_increment, buyout_price,
        ends_at, auto_extend, extension_seconds, status, created_at, updated_at`

// ListingRepository implements domain.ListingRepository
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*domain.Listing, error) {
	l := &domain.Listing{}
	var buyout decimal.NullDecimal
	var extensionSeconds int32
	err := row.Scan(
		&l.ID,
		&l.ItemID,
		&l.SellerID,
		&l.StartingPrice,
		&l.CurrentPrice,
		&l.MinIncrement,
		&buyout,
		&l.EndsAt,
		&l.AutoExtend,
		&extensionSeconds,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if buyout.Valid {
		l.BuyoutPrice = &buyout.Decimal
	}
	l.ExtensionWindow = time.Duration(extensionSeconds) * time.Second
	return l, nil
}

func collectListings(rows pgx.Rows) ([]*domain.Listing, error) {
	defer rows.Close()
	listings := []*domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `
        INSERT INTO auction_listings (id, item_id, seller_id, starting_price, current_price, min_increment,
            buyout_price, ends_at, auto_extend, extension_seconds, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := r.pool.Exec(ctx, query,
		l.ID,
		l.ItemID,
		l.SellerID,
		l.StartingPrice,
		l.CurrentPrice,
		l.MinIncrement,
		nullDecimal(l.BuyoutPrice),
		l.EndsAt,
		l.AutoExtend,
		int32(l.ExtensionWindow/time.Second),
		l.Status,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM auction_listings WHERE id = $1`
	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM auction_listings WHERE id = $1 FOR UPDATE`
	l, err := scanListing(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// Save is a compare-and-swap on current_price.
func (r *ListingRepository) Save(ctx context.Context, tx pgx.Tx, l *domain.Listing, expectedPrice decimal.Decimal) error {
	query := `
        UPDATE auction_listings
        SET current_price = $2, ends_at = $3, status = $4, updated_at = NOW()
        WHERE id = $1 AND current_price = $5
    `
	tag, err := tx.Exec(ctx, query, l.ID, l.CurrentPrice, l.EndsAt, l.Status, expectedPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentBid
	}
	return nil
}

func (r *ListingRepository) GetActive(ctx context.Context, now time.Time) ([]*domain.Listing, error) {
	query := `
        SELECT ` + listingColumns + `
        FROM auction_listings
        WHERE status = $1 AND ends_at > $2
        ORDER BY ends_at ASC, id ASC
    `
	rows, err := r.pool.Query(ctx, query, domain.StatusActive, now)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

func (r *ListingRepository) GetExpiredActive(ctx context.Context, now time.Time, limit int) ([]*domain.Listing, error) {
	query := `
        SELECT ` + listingColumns + `
        FROM auction_listings
        WHERE status = $1 AND ends_at <= $2
        ORDER BY ends_at ASC
        LIMIT $3
    `
	rows, err := r.pool.Query(ctx, query, domain.StatusActive, now, limit)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

func (r *ListingRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM auction_listings WHERE status = $1 AND ends_at > $2`,
		domain.StatusActive, now,
	).Scan(&n)
	return n, err
}

func (r *ListingRepository) CountEndingBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM auction_listings WHERE status = $1 AND ends_at > $2 AND ends_at <= $3`,
		domain.StatusActive, from, to,
	).Scan(&n)
	return n, err
}
