package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magicvault/vault/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// redisStore implements Store on a Redis instance.
type redisStore struct {
	client redis.UniversalClient
	prefix string
	logger logger.Logger
}

// NewRedis connects to cfg.RedisURL and verifies the connection with PING.
func NewRedis(ctx context.Context, cfg Config, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opts.DialTimeout = cfg.Timeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() // nolint:errcheck
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Debug("redis store opened", "addr", opts.Addr, "db", opts.DB)

	return NewRedisWithClient(client, cfg.KeyPrefix, log), nil
}

// NewRedisWithClient wraps an existing client. Keys are stored as "<prefix>:<key>".
func NewRedisWithClient(client redis.UniversalClient, prefix string, log logger.Logger) Store {
	if prefix == "" {
		prefix = "vault"
	}

	return &redisStore{
		client: client,
		prefix: prefix,
		logger: log,
	}
}

// Get implements Store.Get.
func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", err
	}

	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	return value, nil
}

// Set implements Store.Set.
func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Remove implements Store.Remove.
func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close implements Store.Close.
func (s *redisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	s.logger.Debug("redis store closed")
	return nil
}

func (s *redisStore) key(key string) string {
	return s.prefix + ":" + key
}
