package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the shared client. Zero values keep the defaults.
type Options struct {
	Addr     string
	Username string
	Password string
	PoolSize int
	// Timeout bounds each read and write, and the startup ping takes twice it.
	Timeout time.Duration
}

func (o Options) redisOptions() *redis.Options {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	poolSize := o.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	return &redis.Options{
		Addr:         o.Addr,
		Username:     o.Username,
		Password:     o.Password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     poolSize,
		MinIdleConns: 1,
	}
}

// NewRedisClient connects and pings. The same client serves cache reads and
// publishes; subscriptions take their own connection from the pool.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	ro := opts.redisOptions()
	rdb := redis.NewClient(ro)

	pingCtx, cancel := context.WithTimeout(ctx, 2*ro.DialTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}
