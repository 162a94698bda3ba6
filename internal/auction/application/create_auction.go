package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	userdomain "github.com/cristianortiz/numismaticMarket/internal/user/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateAuctionDTO struct {
	SellerID      uuid.UUID
	ItemID        uuid.UUID
	StartingPrice decimal.Decimal
	MinIncrement  *decimal.Decimal
	BuyoutPrice   *decimal.Decimal
	EndsAt        time.Time
	AutoExtend    bool
}

// CreateAuctionUseCase lists a seller's item as an auction.
type CreateAuctionUseCase struct {
	listingRepo     domain.ListingRepository
	userRepo        userdomain.UserRepository
	extensionWindow time.Duration
	now             func() time.Time
}

func NewCreateAuctionUseCase(listingRepo domain.ListingRepository, userRepo userdomain.UserRepository,
	extensionWindow time.Duration, now func() time.Time) *CreateAuctionUseCase {
	if now == nil {
		now = time.Now
	}
	return &CreateAuctionUseCase{
		listingRepo:     listingRepo,
		userRepo:        userRepo,
		extensionWindow: extensionWindow,
		now:             now,
	}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (*domain.Listing, error) {
	now := uc.now()
	if err := validateCreate(cmd, now); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByID(ctx, cmd.SellerID); err != nil {
		return nil, fmt.Errorf("create auction use case: seller %s: %w", cmd.SellerID, err)
	}

	increment := domain.DefaultMinIncrement
	if cmd.MinIncrement != nil {
		increment = *cmd.MinIncrement
	}
	var window time.Duration
	if cmd.AutoExtend {
		window = uc.extensionWindow
	}

	listing := domain.NewListing(uuid.New(), cmd.ItemID, cmd.SellerID, cmd.StartingPrice, increment,
		cmd.BuyoutPrice, cmd.EndsAt, cmd.AutoExtend, window, now)
	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		log.Error("CreateAuctionUseCase: failed to create listing",
			zap.String("sellerID", cmd.SellerID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create auction use case: %w", err)
	}

	log.Info("Auction listing created",
		zap.String("listingID", listing.ID.String()),
		zap.String("sellerID", listing.SellerID.String()),
		zap.Time("endsAt", listing.EndsAt),
	)
	return listing, nil
}

func validateCreate(cmd CreateAuctionDTO, now time.Time) error {
	switch {
	case cmd.SellerID == uuid.Nil || cmd.ItemID == uuid.Nil:
		return fmt.Errorf("%w: seller_id and item_id are required", domain.ErrInvalidListing)
	case cmd.StartingPrice.IsNegative():
		return fmt.Errorf("%w: starting price must not be negative", domain.ErrInvalidListing)
	case !cmd.EndsAt.After(now):
		return fmt.Errorf("%w: ends_at must be in the future", domain.ErrInvalidListing)
	case cmd.MinIncrement != nil && !cmd.MinIncrement.IsPositive():
		return fmt.Errorf("%w: min increment must be positive", domain.ErrInvalidListing)
	case cmd.BuyoutPrice != nil && !cmd.BuyoutPrice.GreaterThan(cmd.StartingPrice):
		return fmt.Errorf("%w: buyout price must exceed the starting price", domain.ErrInvalidListing)
	case !domain.IsMoney(cmd.StartingPrice),
		cmd.MinIncrement != nil && !domain.IsMoney(*cmd.MinIncrement),
		cmd.BuyoutPrice != nil && !domain.IsMoney(*cmd.BuyoutPrice):
		return fmt.Errorf("%w: prices must have at most 2 decimal places", domain.ErrInvalidListing)
	}
	return nil
}
