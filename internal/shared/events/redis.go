package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "auction_events:"

// NewRedisClient connects and pings Redis.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func Channel(listingID string) string {
	return channelPrefix + listingID
}

// ListingFromChannel is the inverse of Channel; "" for foreign channels.
func ListingFromChannel(channel string) string {
	if !strings.HasPrefix(channel, channelPrefix) {
		return ""
	}
	return strings.TrimPrefix(channel, channelPrefix)
}

// RedisPublisher publishes events to the per-listing Pub/Sub channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis publisher: marshal event: %w", err)
	}
	return p.client.Publish(ctx, Channel(evt.ListingID.String()), data).Err()
}

// Handler receives decoded events from a relay.
type Handler func(evt Event)

// RedisRelay subscribes to every listing channel and hands events to a Handler.
type RedisRelay struct {
	client  *redis.Client
	handler Handler
}

func NewRedisRelay(client *redis.Client, handler Handler) *RedisRelay {
	return &RedisRelay{client: client, handler: handler}
}

// Run blocks until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis relay: subscribe: %w", err)
	}
	log.Info("Redis relay subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Warn("Redis relay: undecodable event",
					zap.String("channel", msg.Channel),
					zap.Error(err),
				)
				continue
			}
			r.handler(evt)
		}
	}
}
