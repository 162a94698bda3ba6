package application

import (
	"context"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionService is the application API of the auction module, used by the
// REST and websocket adapters.
type AuctionService interface {
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*ListingDTO, error)
	CancelAuction(ctx context.Context, listingID, sellerID uuid.UUID) (*ListingDTO, error)

	GetActiveAuctions(ctx context.Context) ([]ListingDTO, error)
	GetAuctionByID(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	GetBidHistory(ctx context.Context, listingID uuid.UUID) ([]BidDTO, error)
	GetUserBids(ctx context.Context, userID uuid.UUID) ([]BidDTO, error)
	GetAuctionStats(ctx context.Context) (*StatsDTO, error)

	AddToWatchlist(ctx context.Context, userID, listingID uuid.UUID) error
	RemoveFromWatchlist(ctx context.Context, userID, listingID uuid.UUID) error
	GetWatchlist(ctx context.Context, userID uuid.UUID) ([]ListingDTO, error)
}

type auctionService struct {
	placeBidUC  *PlaceBidUseCase
	createUC    *CreateAuctionUseCase
	cancelUC    *CancelAuctionUseCase
	queries     *AuctionQueries
	watchlistUC *WatchlistUseCase
}

func NewAuctionService(placeBidUC *PlaceBidUseCase, createUC *CreateAuctionUseCase, cancelUC *CancelAuctionUseCase,
	queries *AuctionQueries, watchlistUC *WatchlistUseCase) AuctionService {
	return &auctionService{
		placeBidUC:  placeBidUC,
		createUC:    createUC,
		cancelUC:    cancelUC,
		queries:     queries,
		watchlistUC: watchlistUC,
	}
}

func (as *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return as.placeBidUC.Execute(ctx, cmd)
}

func (as *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*ListingDTO, error) {
	l, err := as.createUC.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	dto := ToListingDTO(l, as.createUC.now())
	return &dto, nil
}

func (as *auctionService) CancelAuction(ctx context.Context, listingID, sellerID uuid.UUID) (*ListingDTO, error) {
	l, err := as.cancelUC.Execute(ctx, listingID, sellerID)
	if err != nil {
		return nil, err
	}
	dto := ToListingDTO(l, as.cancelUC.now())
	return &dto, nil
}

func (as *auctionService) GetActiveAuctions(ctx context.Context) ([]ListingDTO, error) {
	return as.queries.GetActiveAuctions(ctx)
}

func (as *auctionService) GetAuctionByID(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	return as.queries.GetAuctionByID(ctx, id)
}

func (as *auctionService) GetBidHistory(ctx context.Context, listingID uuid.UUID) ([]BidDTO, error) {
	return as.queries.GetBidHistory(ctx, listingID)
}

func (as *auctionService) GetUserBids(ctx context.Context, userID uuid.UUID) ([]BidDTO, error) {
	return as.queries.GetUserBids(ctx, userID)
}

func (as *auctionService) GetAuctionStats(ctx context.Context) (*StatsDTO, error) {
	return as.queries.GetAuctionStats(ctx)
}

func (as *auctionService) AddToWatchlist(ctx context.Context, userID, listingID uuid.UUID) error {
	return as.watchlistUC.Add(ctx, userID, listingID)
}

func (as *auctionService) RemoveFromWatchlist(ctx context.Context, userID, listingID uuid.UUID) error {
	return as.watchlistUC.Remove(ctx, userID, listingID)
}

func (as *auctionService) GetWatchlist(ctx context.Context, userID uuid.UUID) ([]ListingDTO, error) {
	return as.watchlistUC.List(ctx, userID)
}
