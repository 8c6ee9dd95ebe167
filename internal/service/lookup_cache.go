package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLookupCache keeps lookup results in redis under
// "<prefix>:<provider>:<query>".
type RedisLookupCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisLookupCache(addr, password string, db int, prefix string) *RedisLookupCache {
	if prefix == "" {
		prefix = "cooking:lookup"
	}
	return &RedisLookupCache{
		Client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		Prefix: prefix,
	}
}

func (c *RedisLookupCache) key(provider, query string) string {
	return c.Prefix + ":" + provider + ":" + query
}

func (c *RedisLookupCache) Get(ctx context.Context, provider, query string) ([]NutrientFact, bool, error) {
	raw, err := c.Client.Get(ctx, c.key(provider, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s/%s: %w", provider, query, err)
	}
	var facts []NutrientFact
	if err := json.Unmarshal(raw, &facts); err != nil {
		return nil, false, fmt.Errorf("decode redis facts %s/%s: %w", provider, query, err)
	}
	return facts, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, provider, query string, facts []NutrientFact, ttl time.Duration) error {
	raw, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode redis facts: %w", err)
	}
	if err := c.Client.Set(ctx, c.key(provider, query), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", provider, query, err)
	}
	return nil
}

func (c *RedisLookupCache) Close() error {
	return c.Client.Close()
}
