package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"

	redis "github.com/redis/go-redis/v9"
)

// redisStore backs the session store with redis so several webserver
// instances can share device sessions.
type redisStore struct {
	inner *redis.Client
}

const redisKeyPrefix = "health-assistant:session:"

func openRedis(cfg *config.Config) (*redisStore, error) {
	host := cfg.Redis.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Redis.Port
	if port == 0 {
		port = 6379
	}

	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &redisStore{inner: client}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.inner.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.inner.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.inner.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.inner.Close()
}
