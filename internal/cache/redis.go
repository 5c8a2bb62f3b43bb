// Package cache wraps the Redis client shared by every test case
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the readiness check performed when connecting
const pingTimeout = 5 * time.Second

// Client is a wrapper around the go-redis client
type Client struct {
	client *redis.Client
	url    string
}

// NewClientFromURL parses a redis:// URL, connects and verifies the connection
func NewClientFromURL(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	c := &Client{client: rdb, url: url}
	if err := c.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return c, nil
}

// Ping checks the connection, bounded by a short timeout
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// FlushAll removes every key from the cache
func (c *Client) FlushAll(ctx context.Context) error {
	if err := c.client.FlushAll(ctx).Err(); err != nil {
		return fmt.Errorf("redis flush failed: %w", err)
	}
	return nil
}

// Close gracefully closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// URL returns the URL the client was created from
func (c *Client) URL() string {
	return c.url
}

// GetClient returns the underlying go-redis client
func (c *Client) GetClient() *redis.Client {
	return c.client
}
