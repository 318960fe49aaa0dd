package config

import (
	"fmt"

	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

// NewRedis connects to Redis when an address is configured. A nil client means
// the rate limiter runs disabled.
func NewRedis(cfg *Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis addr empty, skipping redis init")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	if _, err := client.Ping().Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis initialized", zap.String("addr", cfg.Redis.Addr))
	return client, nil
}
