package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel-capacity/core/estimate"
)

const keyPrefix = "hotelcap:session:"

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// RedisStore keeps last estimates in Redis as JSON with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects a store to the Redis server at addr
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ttl)
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, id string) (*estimate.Estimate, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, buildKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var est estimate.Estimate
	if err := json.Unmarshal(data, &est); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &est, nil
}

// Put implements Store
func (s *RedisStore) Put(ctx context.Context, id string, est *estimate.Estimate) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	data, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	return s.client.Set(ctx, buildKey(id), data, s.ttl).Err()
}

// Drop implements Store
func (s *RedisStore) Drop(ctx context.Context, id string) error {
	return s.client.Del(ctx, buildKey(id)).Err()
}

func buildKey(id string) string {
	return keyPrefix + id
}
