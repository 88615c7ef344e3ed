package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to redisURL and pings it. The client backs the email job
// queue and the rate limiters.
func NewRedis(ctx context.Context, redisURL string, poolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	// BRPOP in the worker pool blocks for up to 5s
	opts.ReadTimeout = 10 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
