package persist

import (
	"context"
	"errors"
	"time"
)

// RedisClient defines the Redis operations RedisStorage needs.
// This interface is compatible with github.com/redis/go-redis/v9 through a
// thin adapter returning these command types.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) RedisStatusCmd
	Get(ctx context.Context, key string) RedisStringCmd
	Del(ctx context.Context, keys ...string) RedisIntCmd
}

// RedisStatusCmd represents a Redis status command result.
type RedisStatusCmd interface {
	Err() error
}

// RedisStringCmd represents a Redis string command result.
type RedisStringCmd interface {
	Result() (string, error)
	Err() error
}

// RedisIntCmd represents a Redis int command result.
type RedisIntCmd interface {
	Err() error
}

// ErrRedisNil is returned when a key doesn't exist in Redis.
// This should match redis.Nil from go-redis.
var ErrRedisNil = errors.New("redis: nil")

// RedisStorage is a Redis-backed Storage.
type RedisStorage struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures RedisStorage behavior.
type RedisOption func(*RedisStorage)

// WithRedisPrefix sets the key prefix. Default: "vstore:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *RedisStorage) {
		r.prefix = prefix
	}
}

// WithRedisTTL sets an expiration on every write. Default: 0 (no expiry).
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStorage) {
		r.ttl = ttl
	}
}

// NewRedisStorage creates a Redis-backed storage.
// Closing the client is left to the caller, as it may be shared.
func NewRedisStorage(client RedisClient, opts ...RedisOption) *RedisStorage {
	r := &RedisStorage{
		client: client,
		prefix: "vstore:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStorage) key(key string) string {
	return r.prefix + key
}

// GetItem retrieves key.
func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if isRedisNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// SetItem stores value under key.
func (r *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

// RemoveItem deletes key.
func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Prefix returns the current key prefix.
func (r *RedisStorage) Prefix() string {
	return r.prefix
}

// isRedisNil matches both ErrRedisNil and go-redis's redis.Nil, which is a
// distinct value with the same message.
func isRedisNil(err error) bool {
	return errors.Is(err, ErrRedisNil) || err.Error() == ErrRedisNil.Error()
}

var _ Storage = (*RedisStorage)(nil)
