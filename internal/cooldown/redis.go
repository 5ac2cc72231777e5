package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "marine-sessions:cooldown:"

// RedisStore keeps the last send time of each key in Redis with a TTL equal
// to the cooldown period
type RedisStore struct {
	client *redis.Client
	period time.Duration
}

// RedisOptions configures NewRedisStore
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and checks the connection
func NewRedisStore(ctx context.Context, opts RedisOptions, period time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       opts.Addr,
		Password:   opts.Password,
		DB:         opts.DB,
		MaxRetries: 3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, period: period}, nil
}

// Allow implements Store
func (s *RedisStore) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cooldown: %w", err)
	}

	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// unreadable marker: let the notification through
		return true, nil
	}
	return elapsed(time.UnixMilli(ms), now, s.period), nil
}

// MarkSent implements Store
func (s *RedisStore) MarkSent(ctx context.Context, key string, now time.Time) error {
	value := strconv.FormatInt(now.UnixMilli(), 10)
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.period).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
