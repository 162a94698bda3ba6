package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrListingNotFound     = errors.New("auction listing not found")
	ErrBidTooLow           = errors.New("bid amount is below the minimum bid")
	ErrAuctionEnded        = errors.New("auction has already ended")
	ErrSelfBid             = errors.New("sellers cannot bid on their own listing")
	ErrAuctionNotActive    = errors.New("auction listing is not active")
	ErrAuctionStillRunning = errors.New("auction listing has not reached its end time")
	ErrInvalidAutoBid      = errors.New("auto-bid ceiling must not be below the bid amount")
	ErrConcurrentBid       = errors.New("listing price changed while the bid was processed")
	ErrNotSeller           = errors.New("only the seller can modify this listing")
	ErrInvalidListing      = errors.New("invalid auction listing")
	ErrInvalidAmount       = errors.New("amounts must have at most 2 decimal places")
)

// InvalidBidError reports the minimum a rejected bid had to reach.
type InvalidBidError struct {
	Amount  decimal.Decimal
	Minimum decimal.Decimal
}

func (e *InvalidBidError) Error() string {
	return fmt.Sprintf("bid of %s is below the minimum bid of %s", e.Amount.StringFixed(2), e.Minimum.StringFixed(2))
}

func (e *InvalidBidError) Is(target error) bool {
	return target == ErrBidTooLow
}
