package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the connectivity check performed when a Redis cache
// is constructed. Failing fast here is friendlier than failing on the
// first fetch of a multi-hundred-resource crawl.
const pingTimeout = 5 * time.Second

// RedisConfig holds connection settings for the Redis cache backend.
type RedisConfig struct {
	// Addr is the Redis server address in "host:port" format.
	Addr string

	// Password is the optional Redis AUTH password.
	Password string

	// DB is the Redis logical database number.
	DB int
}

// Redis is a Cache backed by an external Redis server. Entries are stored
// without expiration; they persist until explicitly dropped or until the
// server's own eviction policy removes them.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to Redis and verifies the connection with a bounded
// ping before returning the cache.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Redis{rdb: rdb}, nil
}

// Close closes the underlying Redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Get returns the cached value for key. A redis.Nil reply is a miss, not
// an error.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key with no expiration.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

// Delete drops key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// Has reports whether key is present.
func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
