// Package bolt journals payment orders in an embedded BoltDB file.
//
// Writes are idempotent: Create returns the stored order when the partner
// order id already exists, and Update skips the write when nothing changed.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/cristianortiz/numismaticMarket/internal/payment/domain"
)

const bucketName = "payment_orders"

type OrderStore struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures the bucket exists.
func Open(path string) (*OrderStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &OrderStore{db: db}, nil
}

func (s *OrderStore) Close() error {
	return s.db.Close()
}

// Create stores o unless its id exists. Returns (existing, false, nil) on a
// duplicate and (o, true, nil) after a write.
func (s *OrderStore) Create(_ context.Context, o *domain.Order) (*domain.Order, bool, error) {
	var result domain.Order
	created := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if existing := b.Get([]byte(o.PartnerOrderID)); existing != nil {
			return json.Unmarshal(existing, &result)
		}

		data, err := json.Marshal(o)
		if err != nil {
			return err
		}
		result = *o
		created = true
		return b.Put([]byte(o.PartnerOrderID), data)
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

func (s *OrderStore) Get(_ context.Context, partnerOrderID string) (*domain.Order, error) {
	var o domain.Order
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(partnerOrderID))
		if v == nil {
			return domain.ErrOrderNotFound
		}
		return json.Unmarshal(v, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Update runs fn against the stored order inside one bolt write transaction.
// The order is rewritten only when fn reports a change.
func (s *OrderStore) Update(_ context.Context, partnerOrderID string, fn func(o *domain.Order) (bool, error)) (*domain.Order, bool, error) {
	var result domain.Order
	written := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(partnerOrderID))
		if v == nil {
			return domain.ErrOrderNotFound
		}
		if err := json.Unmarshal(v, &result); err != nil {
			return err
		}

		changed, err := fn(&result)
		if err != nil || !changed {
			return err
		}

		data, err := json.Marshal(&result)
		if err != nil {
			return err
		}
		written = true
		return b.Put([]byte(partnerOrderID), data)
	})
	if err != nil {
		return nil, false, err
	}
	return &result, written, nil
}
