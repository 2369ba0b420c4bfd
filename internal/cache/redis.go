// Package cache provides Redis client setup and cache-aside helpers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"scaffold/internal/middleware"
	"scaffold/internal/observability"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to addr (a host:port or redis:// URL). It returns nil
// when addr is empty or the server is unreachable; callers run without cache.
func InitRedis(addr string) *redis.Client {
	if strings.TrimSpace(addr) == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("Invalid REDIS_URL, continuing without cache", slog.String("error", err.Error()))
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without cache", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	middleware.Logger.Info("Redis connected successfully")
	return client
}

// Store is a JSON cache over Redis. A Store with a nil client is valid and
// always falls through to the loader.
type Store struct {
	client *redis.Client
}

// New wraps client. client may be nil.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying Redis client, or nil.
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

var errStale = errors.New("cache entry invalidated during fetch")

func generationKey(key string) string {
	return key + ":gen"
}

// generation returns the invalidation counter of key, 0 when unset.
func (s *Store) generation(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Aside reads key into dest, or calls fetch to fill dest and stores the
// result for ttl. The result is only stored if key was not invalidated while
// fetch ran. Redis failures are logged and never returned.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if s.Client() == nil {
		return fetch()
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	before, genErr := s.generation(ctx, key)

	if err := fetch(); err != nil {
		return err
	}
	if genErr != nil {
		return nil
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Get(ctx, generationKey(key)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if n != before {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, generationKey(key))
	switch {
	case err == nil, errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
	default:
		middleware.Logger.WarnContext(ctx, "Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate removes keys from the cache and bumps their generation so a
// fetch already in flight does not write stale data back.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s.Client() == nil || len(keys) == 0 {
		return
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(key))
			pipe.Del(ctx, key)
		}
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Cache invalidation failed", slog.String("error", err.Error()))
	}
}

// Ping checks the Redis connection. A Store without a client is always healthy.
func (s *Store) Ping(ctx context.Context) error {
	if s.Client() == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}
