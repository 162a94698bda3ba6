// Package events carries auction domain events out of the write path:
// to NATS for downstream consumers and through Redis Pub/Sub to every
// instance's websocket hub.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/google/uuid"
)

var log = logger.GetLogger()

type Type string

const (
	TypeBidPlaced     Type = "bid_placed"
	TypeAuctionClosed Type = "auction_closed"
	TypeAuctionCancel Type = "auction_cancelled"
)

// Event is the envelope published for every auction state change.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	ListingID  uuid.UUID       `json:"listing_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New marshals payload into a fresh event envelope.
func New(t Type, listingID uuid.UUID, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.New(),
		Type:       t,
		ListingID:  listingID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(ctx context.Context, evt Event) error

func (f PublisherFunc) Publish(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Nop drops every event.
var Nop Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

type multiPublisher []Publisher

// Multi publishes to every non-nil publisher and joins their errors.
func Multi(publishers ...Publisher) Publisher {
	var m multiPublisher
	for _, p := range publishers {
		if p != nil {
			m = append(m, p)
		}
	}
	return m
}

func (m multiPublisher) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
