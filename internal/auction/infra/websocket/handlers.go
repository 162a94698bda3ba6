package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cristianortiz/numismaticMarket/internal/auction/application"
	"github.com/cristianortiz/numismaticMarket/internal/auction/domain"
	"github.com/cristianortiz/numismaticMarket/internal/shared/events"
	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/cristianortiz/numismaticMarket/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler handles inbound frames for the auction context and turns
// auction events into frames for the hub.
type AuctionWSHandler struct {
	ctx            context.Context
	auctionService application.AuctionService
	hub            *websocket.Hub
}

// NewAuctionWSHandler binds connection lifetimes to ctx.
func NewAuctionWSHandler(ctx context.Context, auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		ctx:            ctx,
		auctionService: auctionService,
		hub:            hub,
	}
}

// RegisterRoutes mounts GET <prefix>/auctions/:id as a websocket endpoint.
func (h *AuctionWSHandler) RegisterRoutes(router fiber.Router) {
	router.Use("/auctions", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/auctions/:id", fiberws.New(h.serveConn))
}

func (h *AuctionWSHandler) serveConn(conn *fiberws.Conn) {
	listingID, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		log.Warn("WebSocket connection with invalid listing id", zap.String("id", conn.Params("id")))
		_ = conn.Close()
		return
	}

	client := websocket.NewClient(h.hub, conn, listingID.String(), uuid.NewString())
	if state, err := h.auctionService.GetAuctionByID(h.ctx, listingID); err == nil {
		h.send(client, ServerInitialStateMessage{
			BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
			Payload:     state,
		})
	} else {
		h.sendErrorToClient(client, err)
	}

	h.hub.RegisterClient(client)
	go client.WritePump(h.ctx)
	// fiber closes the connection when this handler returns
	client.ReadPump(h.ctx)
}

// ListenForMessages consumes the hub's inbound queue until ctx is done.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler started listening for inbound messages from hub")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped listening for inbound messages from hub")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorMessage(client, "invalid message format", nil)
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBidMessage(ctx, client, data)
	default:
		h.sendErrorMessage(client, "unknown message type", nil)
	}
}

// handleClientBidMessage only reports failures to the sender. Successful bids
// reach every watcher through the event relay.
func (h *AuctionWSHandler) handleClientBidMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorMessage(client, "invalid bid message format", nil)
		return
	}
	if bidMsg.Payload.ListingID.String() != client.ListingID {
		h.sendErrorMessage(client, "listing ID mismatch", nil)
		return
	}

	_, err := h.auctionService.PlaceBid(ctx, application.PlaceBidDTO{
		ListingID:  bidMsg.Payload.ListingID,
		BidderID:   bidMsg.Payload.BidderID,
		Amount:     bidMsg.Payload.Amount,
		MaxAutoBid: bidMsg.Payload.MaxAutoBid,
	})
	if err != nil {
		h.sendErrorToClient(client, err)
	}
}

// RelayEvent converts an auction event into a frame for the listing's room.
// It is the events.Handler fed by the Redis relay or the local publisher.
func (h *AuctionWSHandler) RelayEvent(evt events.Event) {
	var frame any
	switch evt.Type {
	case events.TypeBidPlaced:
		var p application.BidPlacedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Error("Failed to decode bid event", zap.String("eventID", evt.ID.String()), zap.Error(err))
			return
		}
		msg := ServerListingUpdateMessage{BaseMessage: BaseMessage{Type: MessageTypeServerListingUpdate}}
		msg.Payload.ListingID = evt.ListingID
		msg.Payload.CurrentPrice = p.CurrentPrice
		msg.Payload.MinimumBid = p.MinimumBid
		msg.Payload.EndsAt = p.EndsAt
		msg.Payload.Status = p.Status
		msg.Payload.LastBidAmount = p.Amount
		msg.Payload.LastBidderID = p.BidderID
		msg.Payload.LastBidTime = p.PlacedAt
		frame = msg

	case events.TypeAuctionClosed, events.TypeAuctionCancel:
		var p application.ListingClosedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Error("Failed to decode close event", zap.String("eventID", evt.ID.String()), zap.Error(err))
			return
		}
		msg := ServerAuctionClosedMessage{BaseMessage: BaseMessage{Type: MessageTypeServerAuctionClosed}}
		msg.Payload.ListingID = evt.ListingID
		msg.Payload.Status = p.Status
		msg.Payload.FinalPrice = p.FinalPrice
		msg.Payload.WinningBidID = p.WinningBidID
		msg.Payload.WinnerID = p.WinnerID
		frame = msg

	default:
		log.Debug("Ignoring event", zap.String("type", string(evt.Type)))
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		log.Error("Failed to marshal websocket frame", zap.Error(err))
		return
	}
	h.hub.BroadcastToListing(evt.ListingID.String(), data)
}

func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, err error) {
	var invalid *domain.InvalidBidError
	switch {
	case errors.As(err, &invalid):
		minimum := invalid.Minimum
		h.sendErrorMessage(client, domain.ErrBidTooLow.Error(), &minimum)
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrSelfBid),
		errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrInvalidAutoBid),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrConcurrentBid):
		h.sendErrorMessage(client, rootMessage(err), nil)
	default:
		log.Error("Bid via websocket failed",
			zap.String("clientID", client.ID),
			zap.String("listingID", client.ListingID),
			zap.Error(err),
		)
		h.sendErrorMessage(client, "internal error", nil)
	}
}

// rootMessage strips use case wrapping so clients see the domain message only.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func (h *AuctionWSHandler) sendErrorMessage(client *websocket.Client, message string, minimum *decimal.Decimal) {
	errMsg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeServerError}}
	errMsg.Payload.Error = message
	errMsg.Payload.MinimumBid = minimum
	h.send(client, errMsg)
}

func (h *AuctionWSHandler) send(client *websocket.Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("Failed to marshal websocket message", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("Client send channel full, message dropped",
			zap.String("clientID", client.ID),
			zap.String("listingID", client.ListingID),
		)
	}
}
