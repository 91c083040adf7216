package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to a single Redis instance. Both redis:// URLs and
// bare host:port addresses are accepted.
func NewRedisClient(ctx context.Context, rawURL string) (redis.UniversalClient, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("redis URL cannot be empty")
	}

	var opts *redis.Options
	if !strings.Contains(rawURL, "://") {
		opts = &redis.Options{Addr: rawURL}
	} else {
		parsed, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
