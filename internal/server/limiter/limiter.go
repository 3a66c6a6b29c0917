// Package limiter throttles repeated failed logins per key (the login email).
// After MaxAttempts failures within the window the key is locked until the
// window expires; a successful login clears the counter.
package limiter

import (
	"context"
	"time"
)

type Limiter interface {
	// Check returns common.ErrTooManyAttempts while key is locked out.
	Check(ctx context.Context, key string) error
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type Options struct {
	MaxAttempts int
	Window      time.Duration
}

// Nop never throttles. Used when MaxAttempts is not positive.
type Nop struct{}

func (Nop) Check(context.Context, string) error { return nil }
func (Nop) Fail(context.Context, string) error  { return nil }
func (Nop) Reset(context.Context, string) error { return nil }
