package rate

import (
	"context"
	"fmt"

	xrate "golang.org/x/time/rate"
)

// Limiter gates outbound API calls so we respect Gmail rate limits.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket releases a fixed number of calls per second.
type TokenBucket struct {
	limiter *xrate.Limiter
}

// NewTokenBucket returns a limiter that releases rps tokens per second.
// A non-positive rps yields nil; callers treat a nil Limiter as unlimited.
func NewTokenBucket(rps int) *TokenBucket {
	if rps <= 0 {
		return nil
	}
	// burst of 1 lets the first call proceed immediately
	return &TokenBucket{limiter: xrate.NewLimiter(xrate.Limit(rps), 1)}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate wait canceled: %w", err)
	}
	return nil
}

var _ Limiter = (*TokenBucket)(nil)
