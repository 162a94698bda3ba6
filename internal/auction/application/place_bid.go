package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// PlaceBidDTO is the input of PlaceBidUseCase.
type PlaceBidDTO struct {
	ListingID  uuid.UUID
	BidderID   uuid.UUID
	Amount     decimal.Decimal
	MaxAutoBid *decimal.Decimal
}

// PlaceBidUseCase validates a bid and commits the bid insert and the listing
// price update as one unit.
type PlaceBidUseCase struct {
	listingRepo domain.ListingRepository
	bidRepo     domain.BidRepository
	tx          Transactor
	publisher   events.Publisher
	now         func() time.Time
}

func NewPlaceBidUseCase(listingRepo domain.ListingRepository,
	bidRepo domain.BidRepository,
	tx Transactor,
	publisher events.Publisher,
	now func() time.Time) *PlaceBidUseCase {

	if now == nil {
		now = time.Now
	}
	return &PlaceBidUseCase{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		tx:          tx,
		publisher:   publisher,
		now:         now,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	log.Info("Executing PlaceBidUseCase",
		zap.String("listingID", cmd.ListingID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.String("amount", cmd.Amount.String()),
	)

	var (
		newBid  *domain.Bid
		listing *domain.Listing
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// row lock: competing bids on this listing queue up here
		l, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, cmd.ListingID)
		if err != nil {
			if !errors.Is(err, domain.ErrListingNotFound) {
				log.Error("PlaceBidUseCase: failed to load listing",
					zap.String("listingID", cmd.ListingID.String()),
					zap.Error(err),
				)
			}
			return err
		}

		expectedPrice := l.CurrentPrice
		bid, err := l.PlaceBid(cmd.BidderID, cmd.Amount, cmd.MaxAutoBid, uc.now())
		if err != nil {
			return err
		}

		if err := uc.bidRepo.Save(ctx, tx, bid); err != nil {
			log.Error("PlaceBidUseCase: failed to save new bid",
				zap.String("listingID", cmd.ListingID.String()),
				zap.String("bidID", bid.ID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("failed to save new bid: %w", err)
		}
		if err := uc.listingRepo.Save(ctx, tx, l, expectedPrice); err != nil {
			if !errors.Is(err, domain.ErrConcurrentBid) {
				log.Error("PlaceBidUseCase: failed to save updated listing",
					zap.String("listingID", cmd.ListingID.String()),
					zap.Error(err),
				)
			}
			return fmt.Errorf("failed to save updated listing: %w", err)
		}

		newBid, listing = bid, l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("place bid use case: listing %s: %w", cmd.ListingID, err)
	}

	log.Info("PlaceBidUseCase: bid committed",
		zap.String("listingID", listing.ID.String()),
		zap.String("bidID", newBid.ID.String()),
		zap.String("currentPrice", listing.CurrentPrice.String()),
	)

	publish(ctx, uc.publisher, events.TypeBidPlaced, listing.ID, BidPlacedPayload{
		BidID:        newBid.ID,
		BidderID:     newBid.BidderID,
		Amount:       newBid.Amount,
		CurrentPrice: listing.CurrentPrice,
		MinimumBid:   listing.MinimumBid(),
		EndsAt:       listing.EndsAt,
		Status:       string(listing.Status),
		PlacedAt:     newBid.CreatedAt,
	})
	if listing.Status == domain.StatusSold {
		publish(ctx, uc.publisher, events.TypeAuctionClosed, listing.ID, closedPayload(listing, newBid))
	}

	return newBid, nil
}
