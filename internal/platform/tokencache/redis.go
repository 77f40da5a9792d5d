package tokencache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resource_hub/internal/platform/config"
)

// Cache mirrors the most recently issued token per account, keyed by tenant
// role and account id. It is a best-effort side store; verification never
// reads it.
type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func Connect(cfg *config.Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

func (c *Cache) Store(ctx context.Context, role, id, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, tokenKey(role, id), token, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, role, id string) (string, error) {
	token, err := c.rdb.Get(ctx, tokenKey(role, id)).Result()
	if err != nil {
		return "", err
	}
	return token, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

func tokenKey(role, id string) string {
	return "token:" + role + ":" + id
}
