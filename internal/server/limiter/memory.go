package limiter

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/dmitrijs2005/bioguard/internal/common"
)

// MemoryLimiter counts failures in a process-local go-cache. Suitable for
// a single server instance.
type MemoryLimiter struct {
	opts  Options
	cache *cache.Cache
}

func NewMemoryLimiter(opts Options) *MemoryLimiter {
	return &MemoryLimiter{
		opts:  opts,
		cache: cache.New(opts.Window, 2*opts.Window),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string) error {
	v, ok := l.cache.Get(key)
	if !ok {
		return nil
	}
	if n, _ := v.(int); n >= l.opts.MaxAttempts {
		return common.ErrTooManyAttempts
	}
	return nil
}

func (l *MemoryLimiter) Fail(_ context.Context, key string) error {
	// the first failure fixes the window; later ones keep its expiry
	if err := l.cache.Add(key, 1, l.opts.Window); err == nil {
		return nil
	}
	if _, err := l.cache.IncrementInt(key, 1); err != nil {
		// expired between Add and Increment
		l.cache.Set(key, 1, l.opts.Window)
	}
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.cache.Delete(key)
	return nil
}
