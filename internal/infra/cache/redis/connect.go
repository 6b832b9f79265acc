package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and verifies connectivity.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx2).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// HealthChecker adapts a client to the health endpoint.
type HealthChecker struct {
	Client *goredis.Client
}

func (h HealthChecker) Check(ctx context.Context) error {
	return h.Client.Ping(ctx).Err()
}
