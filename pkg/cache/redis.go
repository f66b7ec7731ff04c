package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"igreport/pkg/logger"
	"igreport/pkg/stats"
)

// KeyPrefix namespaces every key igreport writes
const KeyPrefix = "igreport:"

// RedisOptions holds connection settings
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores scans as JSON strings with a TTL
type Redis struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedis connects and pings the server
func NewRedis(opts RedisOptions, log logger.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.InfoWithFields("Redis connected", map[string]interface{}{
		"addr": opts.Addr,
		"db":   opts.DB,
	})

	return &Redis{client: client, logger: log}, nil
}

// Get loads a scan. A missing key is not an error.
func (r *Redis) Get(ctx context.Context, key string) (*stats.ProfileStats, bool, error) {
	value, err := r.client.Get(ctx, KeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Cache get failed")
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var result stats.ProfileStats
	if err := json.Unmarshal([]byte(value), &result); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Cache unmarshal failed")
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return &result, true, nil
}

// Set stores value for ttl. A ttl of zero never expires.
func (r *Redis) Set(ctx context.Context, key string, value *stats.ProfileStats, ttl time.Duration) error {
	if value == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := r.client.Set(ctx, KeyPrefix+key, data, ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Cache set failed")
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Cache delete failed")
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
