// Package rest exposes the auction service over fiber.
package rest

import (
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/auction/application"
	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/auction/infra/export"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	userdomain "github.com/cristianortiz/numismaticMarket/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

type AuctionHandler struct {
	auctionService application.AuctionService
}

func NewAuctionHandler(auctionService application.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

func (h *AuctionHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/auctions", h.createAuction)
	r.Get("/auctions", h.getActiveAuctions)
	r.Get("/auctions/stats", h.getStats)
	r.Get("/auctions/:id", h.getAuction)
	r.Post("/auctions/:id/bids", h.placeBid)
	r.Get("/auctions/:id/bids", h.getBidHistory)
	r.Post("/auctions/:id/cancel", h.cancelAuction)

	r.Get("/users/:id/bids", h.getUserBids)
	r.Get("/users/:id/watchlist", h.getWatchlist)
	r.Put("/users/:id/watchlist/:listingID", h.addToWatchlist)
	r.Delete("/users/:id/watchlist/:listingID", h.removeFromWatchlist)

	r.Get("/admin/auctions/:id/bids.xlsx", h.exportBidHistory)
}

type createAuctionRequest struct {
	SellerID      uuid.UUID        `json:"seller_id"`
	ItemID        uuid.UUID        `json:"item_id"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	MinIncrement  *decimal.Decimal `json:"min_increment"`
	BuyoutPrice   *decimal.Decimal `json:"buyout_price"`
	EndsAt        time.Time        `json:"ends_at"`
	AutoExtend    bool             `json:"auto_extend"`
}

type placeBidRequest struct {
	BidderID   uuid.UUID        `json:"bidder_id"`
	Amount     decimal.Decimal  `json:"amount"`
	MaxAutoBid *decimal.Decimal `json:"max_auto_bid"`
}

type cancelAuctionRequest struct {
	SellerID uuid.UUID `json:"seller_id"`
}

func (h *AuctionHandler) createAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	listing, err := h.auctionService.CreateAuction(c.UserContext(), application.CreateAuctionDTO{
		SellerID:      req.SellerID,
		ItemID:        req.ItemID,
		StartingPrice: req.StartingPrice,
		MinIncrement:  req.MinIncrement,
		BuyoutPrice:   req.BuyoutPrice,
		EndsAt:        req.EndsAt,
		AutoExtend:    req.AutoExtend,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *AuctionHandler) getActiveAuctions(c *fiber.Ctx) error {
	listings, err := h.auctionService.GetActiveAuctions(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listings)
}

func (h *AuctionHandler) getStats(c *fiber.Ctx) error {
	stats, err := h.auctionService.GetAuctionStats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

func (h *AuctionHandler) getAuction(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.auctionService.GetAuctionByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listing)
}

func (h *AuctionHandler) placeBid(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	bid, err := h.auctionService.PlaceBid(c.UserContext(), application.PlaceBidDTO{
		ListingID:  id,
		BidderID:   req.BidderID,
		Amount:     req.Amount,
		MaxAutoBid: req.MaxAutoBid,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(application.ToBidDTO(bid))
}

func (h *AuctionHandler) getBidHistory(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	bids, err := h.auctionService.GetBidHistory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(bids)
}

func (h *AuctionHandler) cancelAuction(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req cancelAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	listing, err := h.auctionService.CancelAuction(c.UserContext(), id, req.SellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listing)
}

func (h *AuctionHandler) getUserBids(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	bids, err := h.auctionService.GetUserBids(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(bids)
}

func (h *AuctionHandler) getWatchlist(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	listings, err := h.auctionService.GetWatchlist(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(listings)
}

func (h *AuctionHandler) addToWatchlist(c *fiber.Ctx) error {
	userID, listingID, err := watchlistParams(c)
	if err != nil {
		return err
	}
	if err := h.auctionService.AddToWatchlist(c.UserContext(), userID, listingID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuctionHandler) removeFromWatchlist(c *fiber.Ctx) error {
	userID, listingID, err := watchlistParams(c)
	if err != nil {
		return err
	}
	if err := h.auctionService.RemoveFromWatchlist(c.UserContext(), userID, listingID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuctionHandler) exportBidHistory(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.auctionService.GetAuctionByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	bids, err := h.auctionService.GetBidHistory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	data, err := export.BidHistoryWorkbook(*listing, bids)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bids-%s.xlsx"`, id))
	return c.Send(data)
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func watchlistParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuidParam(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	listingID, err := uuidParam(c, "listingID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, listingID, nil
}

// writeError maps domain errors to status codes. Anything unmapped goes to
// the server's error handler as a 500.
func writeError(c *fiber.Ctx, err error) error {
	var invalid *domain.InvalidBidError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":       domain.ErrBidTooLow.Error(),
			"minimum_bid": invalid.Minimum,
		})
	}

	status := 0
	switch {
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, userdomain.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrConcurrentBid):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrSelfBid), errors.Is(err, domain.ErrNotSeller):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidListing),
		errors.Is(err, domain.ErrInvalidAutoBid),
		errors.Is(err, domain.ErrInvalidAmount):
		status = fiber.StatusBadRequest
	default:
		return err
	}

	log.Debug("Auction request rejected", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": errorMessage(err)})
}

// errorMessage drops use case prefixes, keeping validation details that the
// domain error was wrapped with.
func errorMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidListing) {
		return err.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
