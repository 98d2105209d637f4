package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/quatro-backend/internal/config"
)

var ErrAddrNotFound = errors.New("redis address is empty")

// NewRedisClient - connects to redis and checks the connection with a ping.
func NewRedisClient(ctx context.Context, conf config.Redis) (*redis.Client, error) {
	if conf.Host == "" || conf.Port == "" {
		return nil, ErrAddrNotFound
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.GetRedisAddr(),
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
