package products

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProductCache holds serialized products in Redis with a TTL. A cache miss is
// (nil, nil), not an error.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache creates a Redis cache client and verifies the connection
func NewProductCache(addr string, ttl time.Duration) (*ProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password
		DB:       0,  // default DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ProductCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Close closes the Redis connection
func (c *ProductCache) Close() error {
	return c.client.Close()
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*Product, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == redis.Nil {
		// Cache miss
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, p *Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(p.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Invalidate drops a product from the cache after a write
func (c *ProductCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
