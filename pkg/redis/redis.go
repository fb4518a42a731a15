package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/config"
	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the connectivity check performed at startup.
const pingTimeout = 5 * time.Second

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// HealthCheck pings Redis for the readiness endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
