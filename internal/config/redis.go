package config

import (
	"context"
	"fmt"
	"time"

	"creditoya-web/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens and pings the redis client backing the pending-loan registry
func ConnectRedis(cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("addr", cfg.Redis.Addr).Info("redis connected")
	return client, nil
}
