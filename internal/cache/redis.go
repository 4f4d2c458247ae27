package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
	// Prefix namespaces the engine's keys so Clear never touches
	// foreign data in a shared instance.
	Prefix string
}

// Redis is a Cache backed by a shared Redis instance, letting several
// workers reuse one computation.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects and pings the instance.
func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "bcr"
	}

	log.Info().
		Str("addr", fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)).
		Dur("ttl", cfg.TTL).
		Msg("Redis cache connected")

	return &Redis{client: client, ttl: cfg.TTL, prefix: prefix}, nil
}

// Get implements Cache. Redis expires entries itself, so an expired key
// simply reads as absent.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Clear implements Cache by scanning out the engine's namespace.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	log.Debug().Int("keys", len(keys)).Msg("Cache cleared")
	return nil
}

// Close implements Cache.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) key(key string) string {
	return r.prefix + ":" + key
}
