package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestListing(current string) *Listing {
	l := NewListing(uuid.New(), uuid.New(), uuid.New(), d("50"), decimal.Zero, nil,
		testNow.Add(time.Hour), false, 0, testNow.Add(-time.Hour))
	l.CurrentPrice = d(current)
	return l
}

func TestPlaceBidAcceptsMinimumAndUpdatesPrice(t *testing.T) {
	l := newTestListing("100")
	bidder := uuid.New()

	bid, err := l.PlaceBid(bidder, d("101"), nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.CurrentPrice.Equal(d("101")) {
		t.Fatalf("expected current price 101, got %s", l.CurrentPrice)
	}
	if bid.ListingID != l.ID || bid.BidderID != bidder || !bid.Amount.Equal(d("101")) {
		t.Fatalf("unexpected bid: %+v", bid)
	}
	if bid.ID == uuid.Nil || !bid.CreatedAt.Equal(testNow) {
		t.Fatalf("bid missing id or timestamp: %+v", bid)
	}
}

func TestPlaceBidRejections(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		at      time.Time
		self    bool
		status  ListingStatus
		wantErr error
	}{
		{name: "below minimum", amount: "100.99", at: testNow, wantErr: ErrBidTooLow},
		{name: "negative amount", amount: "-5", at: testNow, wantErr: ErrBidTooLow},
		{name: "after end", amount: "500", at: testNow.Add(2 * time.Hour), wantErr: ErrAuctionEnded},
		{name: "exactly at end", amount: "500", at: testNow.Add(time.Hour), wantErr: ErrAuctionEnded},
		{name: "self bid", amount: "500", at: testNow, self: true, wantErr: ErrSelfBid},
		{name: "self bid after end reports end first", amount: "500", at: testNow.Add(2 * time.Hour), self: true, wantErr: ErrAuctionEnded},
		{name: "low amount reported before end", amount: "1", at: testNow.Add(2 * time.Hour), wantErr: ErrBidTooLow},
		{name: "cancelled listing", amount: "500", at: testNow, status: StatusCancelled, wantErr: ErrAuctionNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestListing("100")
			if tt.status != "" {
				l.Status = tt.status
			}
			bidder := uuid.New()
			if tt.self {
				bidder = l.SellerID
			}

			bid, err := l.PlaceBid(bidder, d(tt.amount), nil, tt.at)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if bid != nil {
				t.Fatalf("expected no bid, got %+v", bid)
			}
			if !l.CurrentPrice.Equal(d("100")) {
				t.Fatalf("rejected bid changed price to %s", l.CurrentPrice)
			}
		})
	}
}

func TestInvalidBidErrorCarriesMinimum(t *testing.T) {
	l := newTestListing("100")
	l.MinIncrement = d("5")

	_, err := l.PlaceBid(uuid.New(), d("104"), nil, testNow)
	var invalid *InvalidBidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidBidError, got %v", err)
	}
	if !invalid.Minimum.Equal(d("105")) {
		t.Fatalf("expected minimum 105, got %s", invalid.Minimum)
	}
}

func TestAutoBidCeilingBelowAmount(t *testing.T) {
	l := newTestListing("100")
	ceiling := d("150")
	if _, err := l.PlaceBid(uuid.New(), d("200"), &ceiling, testNow); !errors.Is(err, ErrInvalidAutoBid) {
		t.Fatalf("expected ErrInvalidAutoBid, got %v", err)
	}
}

func TestAutoExtendNearEnd(t *testing.T) {
	l := newTestListing("100")
	l.AutoExtend = true
	l.ExtensionWindow = 2 * time.Minute
	l.EndsAt = testNow.Add(30 * time.Second)

	if _, err := l.PlaceBid(uuid.New(), d("101"), nil, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testNow.Add(2 * time.Minute); !l.EndsAt.Equal(want) {
		t.Fatalf("expected end extended to %s, got %s", want, l.EndsAt)
	}

	far := newTestListing("100")
	far.AutoExtend = true
	far.ExtensionWindow = 2 * time.Minute
	end := far.EndsAt
	if _, err := far.PlaceBid(uuid.New(), d("101"), nil, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !far.EndsAt.Equal(end) {
		t.Fatalf("bid far from end should not extend, got %s", far.EndsAt)
	}
}

func TestBuyoutMarksSold(t *testing.T) {
	l := newTestListing("100")
	buyout := d("250")
	l.BuyoutPrice = &buyout

	bid, err := l.PlaceBid(uuid.New(), d("250"), nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != StatusSold || !bid.IsWinning {
		t.Fatalf("expected sold listing and winning bid, got %s / %v", l.Status, bid.IsWinning)
	}
}

func TestCloseAndCancel(t *testing.T) {
	l := newTestListing("100")
	if err := l.Close(nil, testNow); !errors.Is(err, ErrAuctionStillRunning) {
		t.Fatalf("expected ErrAuctionStillRunning, got %v", err)
	}

	after := testNow.Add(2 * time.Hour)
	if err := l.Close(nil, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != StatusEnded {
		t.Fatalf("expected ended, got %s", l.Status)
	}

	sold := newTestListing("120")
	top := NewBid(uuid.New(), sold.ID, uuid.New(), d("120"), nil, testNow)
	if err := sold.Close(top, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sold.Status != StatusSold || !top.IsWinning {
		t.Fatalf("expected sold with winning bid, got %s / %v", sold.Status, top.IsWinning)
	}

	c := newTestListing("100")
	if err := c.Cancel(uuid.New(), testNow); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if err := c.Cancel(c.SellerID, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Cancel(c.SellerID, testNow); !errors.Is(err, ErrAuctionNotActive) {
		t.Fatalf("expected ErrAuctionNotActive on second cancel, got %v", err)
	}
}

func TestPlaceBidRejectsSubCentAmounts(t *testing.T) {
	l := newTestListing("100")

	if _, err := l.PlaceBid(uuid.New(), d("101.004"), nil, testNow); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	ceiling := d("150.999")
	if _, err := l.PlaceBid(uuid.New(), d("101"), &ceiling, testNow); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for ceiling, got %v", err)
	}
	if !l.CurrentPrice.Equal(d("100")) {
		t.Fatalf("rejected bid changed price to %s", l.CurrentPrice)
	}

	bid, err := l.PlaceBid(uuid.New(), d("101.50"), nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bid.Amount.Equal(d("101.5")) {
		t.Fatalf("unexpected amount %s", bid.Amount)
	}
}
