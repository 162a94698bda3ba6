package websocket

import (
	"context"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	hubQueueSize    = 256
	clientQueueSize = 32
)

// Hub tracks websocket clients grouped by the listing they watch and fans
// broadcast messages out to them.
type Hub struct {
	// listing ID -> set of clients
	rooms      map[string]map[*Client]struct{}
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	// InboundMessages is consumed by module handlers (the auction handler).
	InboundMessages chan *ClientMessage
}

// Client is a single websocket connection subscribed to one listing.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	ListingID string
	ID        string
}

type Message struct {
	ListingID string
	Data      []byte
}

// ClientMessage pairs raw inbound data with the client that sent it.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		rooms:           make(map[string]map[*Client]struct{}),
		broadcast:       make(chan *Message, hubQueueSize),
		register:        make(chan *Client, hubQueueSize),
		unregister:      make(chan *Client, hubQueueSize),
		InboundMessages: make(chan *ClientMessage, hubQueueSize),
	}
}

// NewClient builds a client bound to hub and listingID.
func NewClient(hub *Hub, conn *websocket.Conn, listingID, id string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, clientQueueSize),
		ListingID: listingID,
		ID:        id,
	}
}

// Run owns the rooms map; it must be the only goroutine touching it.
func (h *Hub) Run(ctx context.Context) {
	log.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("WebSocket hub shutting down")
			for listingID, clients := range h.rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.rooms, listingID)
			}
			return

		case client := <-h.register:
			room, ok := h.rooms[client.ListingID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.ListingID] = room
			}
			room[client] = struct{}{}
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("listingID", client.ListingID),
				zap.Int("roomSize", len(room)),
			)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			room, ok := h.rooms[message.ListingID]
			if !ok {
				continue
			}
			log.Debug("Broadcasting message",
				zap.String("listingID", message.ListingID),
				zap.Int("clients", len(room)),
			)
			for client := range room {
				select {
				case client.Send <- message.Data:
				default:
					// slow consumer
					log.Warn("Client send queue full, dropping client",
						zap.String("clientID", client.ID),
						zap.String("listingID", client.ListingID),
					)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.ListingID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.Send)
	log.Info("Client unregistered",
		zap.String("clientID", client.ID),
		zap.String("listingID", client.ListingID),
	)
	if len(room) == 0 {
		delete(h.rooms, client.ListingID)
	}
}

func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("Register queue full, rejecting client",
			zap.String("clientID", client.ID),
			zap.String("listingID", client.ListingID),
		)
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("Unregister queue full",
			zap.String("clientID", client.ID),
			zap.String("listingID", client.ListingID),
		)
	}
}

// BroadcastToListing queues data for every client watching listingID.
func (h *Hub) BroadcastToListing(listingID string, data []byte) {
	select {
	case h.broadcast <- &Message{ListingID: listingID, Data: data}:
	default:
		log.Error("Broadcast queue full, message dropped", zap.String("listingID", listingID))
	}
}

// ReadPump forwards client frames to InboundMessages. One goroutine per client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.String("listingID", c.ListingID),
					zap.Error(err),
				)
			}
			return
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Inbound queue full, dropping client message",
				zap.String("clientID", c.ID),
				zap.String("listingID", c.ListingID),
			)
		}
	}
}

// WritePump is the single writer for the connection: queued messages and pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Failed to write message to client",
					zap.String("clientID", c.ID),
					zap.String("listingID", c.ListingID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn("Failed to ping client",
					zap.String("clientID", c.ID),
					zap.String("listingID", c.ListingID),
					zap.Error(err),
				)
				return
			}
		}
	}
}
