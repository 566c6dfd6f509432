package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPingTimeout = 3 * time.Second

// ErrRedisDisabled is returned when no cache url is configured.
var ErrRedisDisabled = errors.New("redis cache disabled")

// ConnectRedis opens the stats cache client. Callers treat any error as
// "run without cache".
func ConnectRedis(ctx context.Context, url string, logger zerolog.Logger) (*redis.Client, error) {
	if url == "" {
		return nil, ErrRedisDisabled
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if options.DialTimeout == 0 {
		options.DialTimeout = redisPingTimeout
	}
	// stats reads fall back to the database, keep the cache from stalling them
	options.ReadTimeout = time.Second
	options.WriteTimeout = time.Second

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", options.Addr, err)
	}

	logger.Info().Str("component", "redis").Str("addr", options.Addr).Int("db", options.DB).Msg("redis connected")
	return client, nil
}
