package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType identifies a websocket frame.
type MessageType string

const (
	MessageTypeClientBid           MessageType = "client_bid"            // client places a bid
	MessageTypeServerInitialState  MessageType = "server_initial_state"  // listing snapshot sent on connect
	MessageTypeServerListingUpdate MessageType = "server_lot_update"     // price/end time changed
	MessageTypeServerAuctionClosed MessageType = "server_auction_closed" // listing sold, ended or cancelled
	MessageTypeServerError         MessageType = "server_error"
)

// BaseMessage is embedded by every frame so the type can be sniffed first.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		ListingID  uuid.UUID        `json:"listing_id"`
		BidderID   uuid.UUID        `json:"bidder_id"`
		Amount     decimal.Decimal  `json:"amount"`
		MaxAutoBid *decimal.Decimal `json:"max_auto_bid,omitempty"`
	} `json:"payload"`
}

type ServerListingUpdateMessage struct {
	BaseMessage
	Payload struct {
		ListingID     uuid.UUID       `json:"listing_id"`
		CurrentPrice  decimal.Decimal `json:"current_price"`
		MinimumBid    decimal.Decimal `json:"minimum_bid"`
		EndsAt        time.Time       `json:"ends_at"`
		Status        string          `json:"status"`
		LastBidAmount decimal.Decimal `json:"last_bid_amount"`
		LastBidderID  uuid.UUID       `json:"last_bidder_id"`
		LastBidTime   time.Time       `json:"last_bid_time"`
	} `json:"payload"`
}

type ServerAuctionClosedMessage struct {
	BaseMessage
	Payload struct {
		ListingID    uuid.UUID       `json:"listing_id"`
		Status       string          `json:"status"`
		FinalPrice   decimal.Decimal `json:"final_price"`
		WinningBidID *uuid.UUID      `json:"winning_bid_id,omitempty"`
		WinnerID     *uuid.UUID      `json:"winner_id,omitempty"`
	} `json:"payload"`
}

type ServerInitialStateMessage struct {
	BaseMessage
	Payload any `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error      string           `json:"error"`
		MinimumBid *decimal.Decimal `json:"minimum_bid,omitempty"`
	} `json:"payload"`
}
