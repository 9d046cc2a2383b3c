package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider paces requests to a Provider with a token bucket.
// It only delays calls; it never retries them.
type RateLimitedProvider struct {
	provider Provider
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
	poll     time.Duration
}

// NewRateLimitedProvider wraps provider so that at most rpm requests start
// per minute. A non-positive rpm returns provider unchanged.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
		poll:     100 * time.Millisecond,
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

func (r *RateLimitedProvider) take(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	refill := int(now.Sub(r.lastFill).Seconds() * float64(r.rpm) / 60.0)
	if refill > 0 {
		r.tokens = min(r.tokens+refill, r.rpm)
		r.lastFill = now
	}
	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if r.take(time.Now()) {
			return nil
		}
		timer.Reset(r.poll)
	}
}
