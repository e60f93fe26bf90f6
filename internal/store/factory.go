package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewStore selects a driver from configuration. An empty redis address
// yields the in-memory store.
func NewStore(ctx context.Context, redisAddr string, ttl time.Duration) (Store, error) {
	if strings.TrimSpace(redisAddr) == "" {
		return NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", redisAddr, err)
	}
	return NewRedisStore(client, ttl), nil
}
