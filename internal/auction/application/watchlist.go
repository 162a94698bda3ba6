package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/google/uuid"
)

type WatchlistUseCase struct {
	repo domain.WatchlistRepository
	now  func() time.Time
}

func NewWatchlistUseCase(repo domain.WatchlistRepository, now func() time.Time) *WatchlistUseCase {
	if now == nil {
		now = time.Now
	}
	return &WatchlistUseCase{repo: repo, now: now}
}

// Add is idempotent: watching a listing twice keeps one entry.
func (uc *WatchlistUseCase) Add(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := uc.repo.Add(ctx, userID, listingID); err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}
	return nil
}

func (uc *WatchlistUseCase) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := uc.repo.Remove(ctx, userID, listingID); err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	return nil
}

func (uc *WatchlistUseCase) List(ctx context.Context, userID uuid.UUID) ([]ListingDTO, error) {
	listings, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get watchlist: %w", err)
	}
	return toListingDTOs(listings, uc.now()), nil
}
