package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns a client for c, or nil when Redis is not configured or
// not reachable. Callers fall back to the in-process cache on nil.
func NewRedis(ctx context.Context, c Redis) (*redis.Client, error) {
	if c.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Pass,
		DB:       c.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
