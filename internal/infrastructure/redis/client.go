package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const (
	clientName       = "glcore"
	pingAttempts     = 3
	pingInitialDelay = 100 * time.Millisecond
)

// NewClient parses redisURL, connects and waits for the server to answer PING.
// The ping is retried briefly so the service can start alongside Redis.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = clientName
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pingInitialDelay
	ping := func() error { return client.Ping(ctx).Err() }

	if err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(b, pingAttempts-1), ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
