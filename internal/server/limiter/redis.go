package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/bioguard/internal/common"
)

const keyPrefix = "bioguard:login:"

// redisClient is the subset of *redis.Client used by RedisLimiter.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLimiter shares failure counters between server instances.
type RedisLimiter struct {
	opts Options
	rdb  redisClient
}

func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisLimiter(rdb redisClient, opts Options) *RedisLimiter {
	return &RedisLimiter{opts: opts, rdb: rdb}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) error {
	n, err := l.rdb.Get(ctx, keyPrefix+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("limiter get: %w", err)
	}
	if n >= l.opts.MaxAttempts {
		return common.ErrTooManyAttempts
	}
	return nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	n, err := l.rdb.Incr(ctx, keyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, keyPrefix+key, l.opts.Window).Err(); err != nil {
			return fmt.Errorf("limiter expire: %w", err)
		}
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("limiter del: %w", err)
	}
	return nil
}
