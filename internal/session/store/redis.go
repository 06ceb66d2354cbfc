package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/Liutianci99/grad-pilipala/pkg/platform/sentinel"
)

var (
	redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pilipala_session_redis_op_duration_ms",
		Help:    "Latency of session storage operations against Redis in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	}, []string{"op"})
)

const keyPrefix = "pilipala:session:"

// Redis is a Storage whose keys live under one scope in Redis. Processes that
// share a scope see the same session, like views inside one browser tab.
type Redis struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// RedisOption configures a Redis storage.
type RedisOption func(*Redis)

// WithTTL expires stored values after ttl of inactivity. Zero keeps them until
// the scope is cleared.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis constructs a Redis-backed storage for scope.
func NewRedis(client *redis.Client, scope string, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		scope:  scope,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) key(k string) string {
	return keyPrefix + r.scope + ":" + k
}

func observe(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	defer observe("get", time.Now())

	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	if r.ttl > 0 {
		// Sliding expiry; a failed refresh is not worth failing the read.
		_ = r.client.Expire(ctx, r.key(key), r.ttl).Err()
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	defer observe("set", time.Now())

	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	defer observe("remove", time.Now())

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

// ClearScope deletes every key of this scope, ending the session for all
// processes sharing it.
func (r *Redis) ClearScope(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+r.scope+":*", 100).Iterator()
	pipe := r.client.Pipeline()
	n := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		n++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan session scope: %w", err)
	}
	if n == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}
