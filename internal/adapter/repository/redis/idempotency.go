package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/glcore/internal/infrastructure/metrics"
)

const idempotencyPlaceholder = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore. m may be nil.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "idempotency:",
		metrics: m,
	}
}

// CheckAndSet claims key with response, or with a placeholder when response is nil.
// When the key is already claimed it returns true and the stored value.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := response
	if value == nil {
		value = []byte(idempotencyPlaceholder)
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	s.observe("setnx", err)
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released between SETNX and GET; the caller may retry the request.
		s.observe("get", nil)
		return true, nil, nil
	}
	s.observe("get", err)
	if err != nil {
		return false, nil, err
	}
	return true, existing, nil
}

// Update stores the final response of a claimed key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, s.prefix+key, response, ttl).Err()
	s.observe("set", err)
	return err
}

// Release drops a claimed key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	s.observe("del", err)
	return err
}

func (s *IdempotencyStore) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RedisOperations.WithLabelValues("idempotency_" + op).Inc()
	if err != nil {
		s.metrics.RedisErrors.WithLabelValues("idempotency_" + op).Inc()
	}
}
