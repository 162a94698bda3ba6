package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CancelAuctionUseCase struct {
	listingRepo domain.ListingRepository
	tx          Transactor
	publisher   events.Publisher
	now         func() time.Time
}

func NewCancelAuctionUseCase(listingRepo domain.ListingRepository, tx Transactor,
	publisher events.Publisher, now func() time.Time) *CancelAuctionUseCase {
	if now == nil {
		now = time.Now
	}
	return &CancelAuctionUseCase{listingRepo: listingRepo, tx: tx, publisher: publisher, now: now}
}

func (uc *CancelAuctionUseCase) Execute(ctx context.Context, listingID, sellerID uuid.UUID) (*domain.Listing, error) {
	var cancelled *domain.Listing
	err := uc.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		l, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if err := l.Cancel(sellerID, uc.now()); err != nil {
			return err
		}
		if err := uc.listingRepo.Save(ctx, tx, l, l.CurrentPrice); err != nil {
			return err
		}
		cancelled = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel auction use case: listing %s: %w", listingID, err)
	}

	publish(ctx, uc.publisher, events.TypeAuctionCancel, cancelled.ID, closedPayload(cancelled, nil))
	return cancelled, nil
}
