package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cristianortiz/numismaticMarket/internal/extraction/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, ttl), mr
}

func TestKeyIsStableAndBounded(t *testing.T) {
	url := "https://coins.example/lot?id=1&" + strings.Repeat("q", 4096)
	k1, k2 := Key(url, ""), Key(url, "")
	if k1 != k2 {
		t.Fatal("key must be deterministic")
	}
	if !strings.HasPrefix(k1, keyPrefix) || len(k1) != len(keyPrefix)+64 {
		t.Fatalf("unexpected key %q", k1)
	}
	if Key("https://coins.example/a", "") == Key("https://coins.example/b", "") {
		t.Fatal("different urls must not collide")
	}
	if Key(url, "1921 Morgan") == Key(url, "1881 Indian cent") {
		t.Fatal("different content must not collide")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Fatal("url and content boundary must be part of the key")
	}
}

func TestGetMissReturnsNotFound(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	rec, ok, err := c.Get(context.Background(), "https://coins.example/none", "")
	if err != nil || ok || rec != nil {
		t.Fatalf("expected clean miss, got rec=%v ok=%v err=%v", rec, ok, err)
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	url, content := "https://coins.example/lot/1", "1921 Morgan dollar MS63 $45.50"

	name, grade := "1921 Dollar", "MS63"
	year := 1921
	price := decimal.RequireFromString("45.50")
	conf := 0.95
	in := &domain.ExtractedCoinRecord{
		SourceURL:   url,
		Name:        &name,
		Year:        &year,
		Price:       &price,
		Grade:       &grade,
		Confidence:  conf,
		Source:      domain.SourceAI,
		ExtractedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, url, content, in); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL(Key(url, content)); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	out, ok, err := c.Get(ctx, url, content)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.SourceURL != url || *out.Name != name || *out.Year != 1921 || *out.Grade != grade {
		t.Fatalf("unexpected record %+v", out)
	}
	if !out.Price.Equal(price) || out.Confidence != conf || out.Source != domain.SourceAI {
		t.Fatalf("unexpected record %+v", out)
	}
	if !out.ExtractedAt.Equal(in.ExtractedAt) {
		t.Fatalf("timestamp changed: %v", out.ExtractedAt)
	}

	if _, ok, _ := c.Get(ctx, url, "1881 Indian cent VF20"); ok {
		t.Fatal("other content for the same url must miss")
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, url, content); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestGetRejectsCorruptValue(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	url := "https://coins.example/bad"
	if err := mr.Set(Key(url, ""), "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(context.Background(), url, ""); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}
