package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 3 * time.Second

// ConnectRedis dials Redis and verifies the connection with a ping,
// retrying with exponential backoff.
func ConnectRedis(ctx context.Context, addr string, password string, maxRetries int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			log.Info().Dur("backoff", backoff).Msg("Waiting before Redis retry")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("redis connect cancelled: %w", ctx.Err())
			}
		}

		log.Info().Int("attempt", attempt).Int("max_retries", maxRetries).Msg("Connecting to Redis")

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info().Int("attempts_needed", attempt).Msg("Redis connected")
			return client, nil
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("Redis ping failed")
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}
