package application

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const closeBatchSize = 100

// CloseAuctionsUseCase finalizes active listings whose end time has passed.
type CloseAuctionsUseCase struct {
	listingRepo domain.ListingRepository
	bidRepo     domain.BidRepository
	tx          Transactor
	publisher   events.Publisher
	now         func() time.Time
}

func NewCloseAuctionsUseCase(listingRepo domain.ListingRepository, bidRepo domain.BidRepository,
	tx Transactor, publisher events.Publisher, now func() time.Time) *CloseAuctionsUseCase {
	if now == nil {
		now = time.Now
	}
	return &CloseAuctionsUseCase{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		tx:          tx,
		publisher:   publisher,
		now:         now,
	}
}

// Execute closes one batch and returns how many listings it finalized.
// A failure on one listing is logged and does not stop the batch.
func (uc *CloseAuctionsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()
	expired, err := uc.listingRepo.GetExpiredActive(ctx, now, closeBatchSize)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, candidate := range expired {
		var (
			listing *domain.Listing
			winning *domain.Bid
		)
		err := uc.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			l, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, candidate.ID)
			if err != nil {
				return err
			}
			highest, err := uc.bidRepo.GetHighest(ctx, tx, l.ID)
			if err != nil {
				return err
			}
			if err := l.Close(highest, now); err != nil {
				return err
			}
			if highest != nil {
				if err := uc.bidRepo.MarkWinning(ctx, tx, highest.ID); err != nil {
					return err
				}
			}
			if err := uc.listingRepo.Save(ctx, tx, l, l.CurrentPrice); err != nil {
				return err
			}
			listing, winning = l, highest
			return nil
		})
		if err != nil {
			// a bid or cancel may have beaten us to it
			if !errors.Is(err, domain.ErrAuctionNotActive) && !errors.Is(err, domain.ErrAuctionStillRunning) {
				log.Error("CloseAuctionsUseCase: failed to close listing",
					zap.String("listingID", candidate.ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		closed++
		publish(ctx, uc.publisher, events.TypeAuctionClosed, listing.ID, closedPayload(listing, winning))
	}
	return closed, nil
}

// RunCloser executes the use case every interval until ctx is done.
func (uc *CloseAuctionsUseCase) RunCloser(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info("Auction closer started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("Auction closer stopped")
			return
		case <-ticker.C:
			n, err := uc.Execute(ctx)
			if err != nil {
				log.Error("Auction closer run failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("Auction closer finalized listings", zap.Int("count", n))
			}
		}
	}
}
