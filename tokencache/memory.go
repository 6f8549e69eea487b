package tokencache

import (
	"context"
	"sync"
)

// MemoryCache is a thread-safe in-memory Cache. Entries are lost on
// restart, which signs every user out; fine for tests and single-node
// development.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (c *MemoryCache) Put(_ context.Context, userID, token string) error {
	c.mu.Lock()
	c.data[Key(userID)] = token
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(_ context.Context, userID string) (string, bool, error) {
	c.mu.RLock()
	token, ok := c.data[Key(userID)]
	c.mu.RUnlock()
	return token, ok, nil
}

func (c *MemoryCache) Remove(_ context.Context, userID string) error {
	c.mu.Lock()
	delete(c.data, Key(userID))
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) IsCurrent(ctx context.Context, userID, token string) (bool, error) {
	cached, ok, err := c.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && cached == token, nil
}
