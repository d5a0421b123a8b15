package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialmart-be/internal/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Store is a JSON value cache keyed by string.
type Store interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

func ProductKey(id string) string {
	return "product:" + id
}

// ProductKeys maps product ids to their cache keys.
func ProductKeys(ids ...string) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ProductKey(id))
	}
	return keys
}

// Invalidate deletes the product entries and logs a failure. A stale entry
// expires with its TTL.
func Invalidate(ctx context.Context, s Store, productIDs ...string) {
	if s == nil || len(productIDs) == 0 {
		return
	}
	if err := s.Delete(ctx, ProductKeys(productIDs...)...); err != nil {
		logger.FromCtx(ctx).Warn("failed to invalidate product cache",
			zap.Strings("product_ids", productIDs),
			zap.Error(err),
		)
	}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisStore(opts Options) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:        opts.Addr,
			Password:    opts.Password,
			DB:          opts.DB,
			DialTimeout: 2 * time.Second,
			ReadTimeout: time.Second,
		}),
		ttl: opts.TTL,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Delete(context.Context, ...string) error        { return nil }
