package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cristianortiz/numismaticMarket/internal/auction/application"
	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/httpserver"
	userdomain "github.com/cristianortiz/numismaticMarket/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stubService embeds the interface so each test overrides only what it hits.
type stubService struct {
	application.AuctionService
	placeErr error
	listing  *application.ListingDTO
	bids     []application.BidDTO
	watched  [][2]uuid.UUID
}

func (s *stubService) PlaceBid(_ context.Context, cmd application.PlaceBidDTO) (*domain.Bid, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &domain.Bid{ID: uuid.New(), ListingID: cmd.ListingID, BidderID: cmd.BidderID, Amount: cmd.Amount}, nil
}

func (s *stubService) GetActiveAuctions(context.Context) ([]application.ListingDTO, error) {
	return []application.ListingDTO{}, nil
}

func (s *stubService) GetAuctionByID(_ context.Context, id uuid.UUID) (*application.ListingDTO, error) {
	if s.listing == nil || s.listing.ID != id {
		return nil, fmt.Errorf("get auction %s: %w", id, domain.ErrListingNotFound)
	}
	return s.listing, nil
}

func (s *stubService) GetBidHistory(context.Context, uuid.UUID) ([]application.BidDTO, error) {
	return s.bids, nil
}

func (s *stubService) AddToWatchlist(_ context.Context, userID, listingID uuid.UUID) error {
	s.watched = append(s.watched, [2]uuid.UUID{userID, listingID})
	return nil
}

func newTestApp(svc application.AuctionService) *fiber.App {
	s := httpserver.NewServer()
	s.Mount("/api/v1", NewAuctionHandler(svc))
	return s.App()
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestPlaceBidStatusMapping(t *testing.T) {
	listingID := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "accepted", wantStatus: fiber.StatusCreated},
		{name: "not found", err: fmt.Errorf("place bid use case: %w", domain.ErrListingNotFound), wantStatus: fiber.StatusNotFound},
		{name: "ended", err: fmt.Errorf("place bid use case: %w", domain.ErrAuctionEnded), wantStatus: fiber.StatusConflict},
		{name: "concurrent", err: fmt.Errorf("place bid use case: %w", domain.ErrConcurrentBid), wantStatus: fiber.StatusConflict},
		{name: "self bid", err: fmt.Errorf("place bid use case: %w", domain.ErrSelfBid), wantStatus: fiber.StatusForbidden},
		{name: "sub-cent amount", err: fmt.Errorf("place bid use case: %w", domain.ErrInvalidAmount), wantStatus: fiber.StatusBadRequest},
		{name: "unexpected", err: fmt.Errorf("connection reset"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubService{placeErr: tt.err})
			body := fmt.Sprintf(`{"bidder_id":%q,"amount":"101"}`, uuid.New())
			status, resp := doJSON(t, app, "POST", "/api/v1/auctions/"+listingID.String()+"/bids", body)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d (%v)", tt.wantStatus, status, resp)
			}
			if tt.err != nil && resp["error"] == nil {
				t.Fatalf("expected error body, got %v", resp)
			}
		})
	}
}

func TestPlaceBidTooLowCarriesMinimum(t *testing.T) {
	invalid := &domain.InvalidBidError{Amount: decimal.NewFromInt(50), Minimum: decimal.RequireFromString("101.25")}
	app := newTestApp(&stubService{placeErr: fmt.Errorf("place bid use case: %w", invalid)})

	body := fmt.Sprintf(`{"bidder_id":%q,"amount":50}`, uuid.New())
	status, resp := doJSON(t, app, "POST", "/api/v1/auctions/"+uuid.NewString()+"/bids", body)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	if resp["minimum_bid"] != "101.25" {
		t.Fatalf("expected minimum_bid 101.25, got %v", resp["minimum_bid"])
	}
}

func TestBadUUIDIsBadRequest(t *testing.T) {
	app := newTestApp(&stubService{})
	status, _ := doJSON(t, app, "GET", "/api/v1/auctions/not-a-uuid", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGetAuctionNotFound(t *testing.T) {
	app := newTestApp(&stubService{})
	status, resp := doJSON(t, app, "GET", "/api/v1/auctions/"+uuid.NewString(), "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if resp["error"] != domain.ErrListingNotFound.Error() {
		t.Fatalf("expected bare domain message, got %v", resp["error"])
	}
}

func TestActiveAuctionsEmptyArray(t *testing.T) {
	app := newTestApp(&stubService{})
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/auctions", nil))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", raw)
	}
}

func TestAddToWatchlist(t *testing.T) {
	svc := &stubService{}
	app := newTestApp(svc)
	user, listing := uuid.New(), uuid.New()

	status, _ := doJSON(t, app, "PUT", fmt.Sprintf("/api/v1/users/%s/watchlist/%s", user, listing), "")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	if len(svc.watched) != 1 || svc.watched[0] != [2]uuid.UUID{user, listing} {
		t.Fatalf("unexpected watchlist calls: %v", svc.watched)
	}
}

func TestExportBidHistory(t *testing.T) {
	listing := &application.ListingDTO{ID: uuid.New(), Status: "active"}
	svc := &stubService{listing: listing, bids: []application.BidDTO{{ID: uuid.New(), Amount: decimal.NewFromInt(10)}}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/admin/auctions/"+listing.ID.String()+"/bids.xlsx", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "bids-"+listing.ID.String()) {
		t.Fatalf("missing attachment filename: %q", resp.Header.Get(fiber.HeaderContentDisposition))
	}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) < 4 || string(raw[:2]) != "PK" {
		t.Fatal("expected a zip-based xlsx body")
	}
}

func TestCreateAuctionMissingSeller(t *testing.T) {
	app := newTestApp(createStub{err: fmt.Errorf("create auction use case: %w", userdomain.ErrUserNotFound)})
	body := fmt.Sprintf(`{"seller_id":%q,"item_id":%q,"starting_price":"10","ends_at":"2030-01-01T00:00:00Z"}`, uuid.New(), uuid.New())
	status, _ := doJSON(t, app, "POST", "/api/v1/auctions", body)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

type createStub struct {
	application.AuctionService
	err error
}

func (s createStub) CreateAuction(context.Context, application.CreateAuctionDTO) (*application.ListingDTO, error) {
	return nil, s.err
}
