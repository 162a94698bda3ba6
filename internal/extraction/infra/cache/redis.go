// Package cache keeps finished extraction records in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "extraction:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Key hashes the URL and inline content so neither can blow up key length.
func Key(url, content string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *RedisCache) Get(ctx context.Context, url, content string) (*domain.ExtractedCoinRecord, bool, error) {
	data, err := c.client.Get(ctx, Key(url, content)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis cache get: %w", err)
	}
	var record domain.ExtractedCoinRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, fmt.Errorf("redis cache decode: %w", err)
	}
	return &record, true, nil
}

func (c *RedisCache) Set(ctx context.Context, url, content string, record *domain.ExtractedCoinRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(url, content), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}
