package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"colors-app-go/internal/config"
)

// "1" marks a held key; redis has no boolean type.
const lockValue = "1"

type Client struct {
	inner  *redis.Client
	prefix string
}

// NewClient connects and pings redis so a bad address fails at startup.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	inner := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := inner.Ping(ctx).Err(); err != nil {
		_ = inner.Close()
		return nil, err
	}
	return &Client{inner: inner, prefix: "colors:"}, nil
}

// Acquire sets key only if it is absent. The key expires after ttl, so a
// crashed holder never blocks the next day.
func (c *Client) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.inner.SetNX(ctx, c.prefix+key, lockValue, ttl).Result()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.inner.Close()
}
