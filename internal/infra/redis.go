package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/patholens/patholens-api/internal/config"
)

// NewRedisClient connects the Redis client used for the news cache and login
// throttling, named after the app, and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.ClientName = cfg.AppName

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
