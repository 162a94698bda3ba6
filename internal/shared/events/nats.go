package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes events on auction.<type>.<listingID>.
type NATSPublisher struct {
	conn *nats.Conn
}

// ConnectNATS dials url with reconnect logging.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("numismaticMarket"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func Subject(evt Event) string {
	return fmt.Sprintf("auction.%s.%s", evt.Type, evt.ListingID)
}

func (p *NATSPublisher) Publish(_ context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("nats publisher: marshal event: %w", err)
	}
	if err := p.conn.Publish(Subject(evt), data); err != nil {
		return fmt.Errorf("nats publisher: publish %s: %w", Subject(evt), err)
	}
	return nil
}
