package cache

import (
	"context"
	"fmt"

	"tour-marketplace/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings. Callers skip it when the address is
// not configured.
func NewRedisClient(ctx context.Context, cfg utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return client, nil
}
