package redisstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/foodcart/core/internal/infrastructure/config"
	"github.com/foodcart/core/internal/infrastructure/logger"
)

// Client wraps a go-redis client together with the key namespace the
// repositories write under.
type Client struct {
	*redis.Client
	config config.RedisConfig
	prefix string
}

// New connects to redis, retrying with exponential backoff until a ping
// succeeds or MaxRetries attempts have failed.
func New(ctx context.Context, cfg config.RedisConfig, appLogger *logger.Logger) (*Client, error) {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.RetryBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: 3,
		})

		lastErr = rdb.Ping(ctx).Err()
		if lastErr == nil {
			appLogger.Infow("Redis connected", "address", cfg.Addr(), "db", cfg.DB)
			return &Client{Client: rdb, config: cfg, prefix: cfg.KeyPrefix}, nil
		}
		rdb.Close()

		appLogger.Warnw("Redis connection failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"error", lastErr,
		)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", attempts, lastErr)
}

// Key joins parts under the configured prefix, e.g. Key("cart", "alice")
// gives "foodcart:cart:alice".
func (c *Client) Key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

// HealthCheck pings the server with a short timeout
func (c *Client) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// GetConnectionInfo returns connection information
func (c *Client) GetConnectionInfo() map[string]interface{} {
	stats := c.PoolStats()
	return map[string]interface{}{
		"address":     c.config.Addr(),
		"database":    c.config.DB,
		"key_prefix":  c.prefix,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}
