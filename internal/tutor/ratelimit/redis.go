package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ai-english-tutor/server/internal/tutor/model"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// RedisLimiter shares the fixed window across processes. Each hit runs INCR
// and PTTL in one transaction and arms the window expiry whenever the key has
// none, so a failed PEXPIRE is retried on the next request. Redis failures let
// the request through.
type RedisLimiter struct {
	rdb redis.Cmdable
	cfg model.RateLimitConfig
}

func NewRedisLimiter(rdb redis.Cmdable, cfg model.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		logx.Warn().Err(err).Str("key", k).Msg("rate limit check failed, allowing request")
		return true, err
	}
	// PTTL reports -1 for a key without expiry.
	if ttl.Val() < 0 {
		if err := l.rdb.PExpire(ctx, k, l.cfg.Window).Err(); err != nil {
			logx.Warn().Err(err).Str("key", k).Msg("failed to set rate limit window")
		}
	}
	return incr.Val() <= int64(l.cfg.MaxRequests), nil
}
