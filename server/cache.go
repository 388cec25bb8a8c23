package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache is a Redis-backed response cache. Cache failures degrade to a miss;
// they never fail the request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration

	// keys written since the last invalidation, dropped wholesale when a new
	// calibration result is published.
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewCache connects to Redis and verifies the connection.
func NewCache(addr string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("server: connect redis: %w", err)
	}
	return &Cache{client: client, ttl: ttl, keys: make(map[string]struct{})}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("cache get %s: %v", key, err)
		return nil, false
	}
	return body, true
}

func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
		return
	}
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
}

// Invalidate drops every key written since the last invalidation.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	c.keys = make(map[string]struct{})
	c.mu.Unlock()

	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("cache invalidate: %v", err)
	}
}
