package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantwatch/signalboard/internal/config"
)

// Client wraps the Redis client with snapshot cache operations. The server
// runs fine without it; every caller must tolerate a nil *Client.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, ttl: cfg.SnapTTL}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SetSnapshot caches a rendered JSON response body. The TTL is short; the
// cache only absorbs bursts of identical snapshot reads, it is never the
// source of truth for delta sync.
func (c *Client) SetSnapshot(ctx context.Context, key string, body []byte) error {
	return c.rdb.Set(ctx, "snapshot:"+key, body, c.ttl).Err()
}

// GetSnapshot retrieves a cached JSON response body, redis.Nil if absent.
func (c *Client) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, "snapshot:"+key).Bytes()
}
