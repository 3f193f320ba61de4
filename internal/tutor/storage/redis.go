package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// RedisStore keeps each value as a plain string key tutor:<namespace>:<key>.
type RedisStore struct {
	rdb       redis.Cmdable
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store; a zero ttl keeps keys forever and a non-zero
// ttl is refreshed on every write.
func NewRedisStore(rdb redis.Cmdable, namespace string, ttl time.Duration) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{rdb: rdb, namespace: namespace, ttl: ttl}
}

func (r *RedisStore) storageKey(key string) string {
	return fmt.Sprintf("tutor:%s:%s", r.namespace, key)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	k := r.storageKey(key)
	v, err := r.rdb.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		logx.Error().Err(err).Str("key", k).Msg("failed to load value from redis")
		return "", false, errx.WrapRedis(err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	k := r.storageKey(key)
	if err := r.rdb.Set(ctx, k, value, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to store value in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	k := r.storageKey(key)
	if err := r.rdb.Del(ctx, k).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to delete value from redis")
		return errx.WrapRedis(err)
	}
	return nil
}
