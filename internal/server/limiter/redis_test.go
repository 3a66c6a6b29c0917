package limiter

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bioguard/internal/common"
)

type fakeRedis struct {
	counts  map[string]int64
	ttl     map[string]time.Duration
	failErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	n, ok := f.counts[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(n, 10), nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.failErr != nil {
		return redis.NewIntResult(0, f.failErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	f.ttl[key] = d
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.counts, k)
		delete(f.ttl, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisLimiter(t *testing.T) {
	f := newFakeRedis()
	l := NewRedisLimiter(f, Options{MaxAttempts: 2, Window: 5 * time.Minute})
	ctx := context.Background()

	require.NoError(t, l.Check(ctx, "a@x"))
	require.NoError(t, l.Fail(ctx, "a@x"))
	assert.Equal(t, 5*time.Minute, f.ttl[keyPrefix+"a@x"])

	require.NoError(t, l.Fail(ctx, "a@x"))
	assert.ErrorIs(t, l.Check(ctx, "a@x"), common.ErrTooManyAttempts)

	require.NoError(t, l.Reset(ctx, "a@x"))
	assert.NoError(t, l.Check(ctx, "a@x"))
}

func TestRedisLimiter_ExpireSetOnlyOnFirstFailure(t *testing.T) {
	f := newFakeRedis()
	l := NewRedisLimiter(f, Options{MaxAttempts: 5, Window: time.Minute})
	ctx := context.Background()

	require.NoError(t, l.Fail(ctx, "k"))
	f.ttl[keyPrefix+"k"] = 0
	require.NoError(t, l.Fail(ctx, "k"))
	assert.Zero(t, f.ttl[keyPrefix+"k"])
}

func TestRedisLimiter_Errors(t *testing.T) {
	f := newFakeRedis()
	f.failErr = errors.New("conn refused")
	l := NewRedisLimiter(f, Options{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	err := l.Check(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrTooManyAttempts)
	require.ErrorContains(t, l.Fail(ctx, "k"), "conn refused")
}
