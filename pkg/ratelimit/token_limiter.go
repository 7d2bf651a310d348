package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a tokens-per-minute budget for LLM requests. The
// window resets a minute after the first consumption in it.
type TokenLimiter struct {
	mu           sync.Mutex
	maxPerMinute int
	used         int
	windowStart  time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMinute tokens per minute.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{maxPerMinute: maxPerMinute}
}

// Wait blocks until n tokens can be consumed or the context is canceled.
// Requests larger than the whole budget are admitted alone against a fresh
// window rather than blocking forever.
func (l *TokenLimiter) Wait(ctx context.Context, n int) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if l.windowStart.IsZero() || now.Sub(l.windowStart) >= time.Minute {
			l.windowStart = now
			l.used = 0
		}
		if l.used+n <= l.maxPerMinute || (l.used == 0 && n > l.maxPerMinute) {
			l.used += n
			l.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(l.windowStart)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.windowStart.IsZero() || time.Since(l.windowStart) >= time.Minute {
		return l.maxPerMinute
	}
	return l.maxPerMinute - l.used
}
