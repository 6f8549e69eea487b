package tokencache

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("auth_tokens")

// BoltCache is a Cache backed by a BBolt file. It suits single-node
// deployments that want revocation to survive a restart without running
// Redis.
type BoltCache struct {
	db *bolt.DB
}

var _ Cache = (*BoltCache)(nil)

// NewBoltCache wraps an open BBolt database, creating the token bucket if
// needed.
func NewBoltCache(db *bolt.DB) (*BoltCache, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating token bucket: %w", err)
	}
	return &BoltCache{db: db}, nil
}

// NewBoltCacheFromFile opens (or creates) the BBolt file at path.
func NewBoltCacheFromFile(path string, options *bolt.Options) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("opening token cache db: %w", err)
	}
	return NewBoltCache(db)
}

// Close closes the underlying database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

func (c *BoltCache) Put(_ context.Context, userID, token string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(Key(userID)), []byte(token))
	})
}

func (c *BoltCache) Get(_ context.Context, userID string) (string, bool, error) {
	var token string
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get([]byte(Key(userID))); v != nil {
			token = string(v)
			found = true
		}
		return nil
	})
	return token, found, err
}

func (c *BoltCache) Remove(_ context.Context, userID string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(Key(userID)))
	})
}

func (c *BoltCache) IsCurrent(ctx context.Context, userID, token string) (bool, error) {
	cached, ok, err := c.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && cached == token, nil
}
