package storagerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	pingTimeout = 2 * time.Second
)

// RedisRepo stores values in a Redis hash so that several terminals on
// different hosts can share one session.
type RedisRepo struct {
	client *redis.Client
	key    string
}

// NewRedisRepo wraps an existing client. hashKey names the hash holding
// the values.
func NewRedisRepo(client *redis.Client, hashKey string) (*RedisRepo, error) {
	if client == nil {
		return nil, errors.New("[RedisRepo New] client is required")
	}
	if hashKey == "" {
		return nil, errors.New("[RedisRepo New] hash key is required")
	}
	return &RedisRepo{client: client, key: hashKey}, nil
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	options.DialTimeout = dialTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return client, nil
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.HGet(ctx, r.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("[RedisRepo Get] %w", err)
	}
	return v, nil
}

func (r *RedisRepo) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}
	if err := r.client.HSet(ctx, r.key, fields).Err(); err != nil {
		return fmt.Errorf("[RedisRepo Set] %w", err)
	}
	return nil
}

func (r *RedisRepo) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key, keys...).Err(); err != nil {
		return fmt.Errorf("[RedisRepo Remove] %w", err)
	}
	return nil
}
