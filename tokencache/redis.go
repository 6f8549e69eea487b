package tokencache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is the production Cache backend. Redis GET/SET/DEL are atomic
// per key, which is all the Cache contract asks for.
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisCacheFromURL parses a redis:// URL, configures connection
// pooling, and pings the server so that a bad address fails at startup
// rather than on the first request.
func NewRedisCacheFromURL(ctx context.Context, url string) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	opt.PoolSize = 100
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedisCache(client), nil
}

// Client exposes the underlying Redis client so other components (the
// preferences store) can share the connection pool.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Put(ctx context.Context, userID, token string) error {
	// No TTL: the entry lives until the next sign-in overwrites it or a
	// sign-out deletes it.
	if err := c.client.Set(ctx, Key(userID), token, 0).Err(); err != nil {
		return fmt.Errorf("caching auth token: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, userID string) (string, bool, error) {
	token, err := c.client.Get(ctx, Key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cached auth token: %w", err)
	}
	return token, true, nil
}

func (c *RedisCache) Remove(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("removing cached auth token: %w", err)
	}
	return nil
}

func (c *RedisCache) IsCurrent(ctx context.Context, userID, token string) (bool, error) {
	cached, ok, err := c.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && cached == token, nil
}
