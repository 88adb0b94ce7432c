// ratelimit.go implements token-bucket rate limiting for the chain RPC
// client. Each call category is limited independently so a burst of event
// polling cannot starve a time-sensitive dev-inspect or submission call.
package rpc

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements a token-bucket rate limiter with continuous
// refill. Callers block in Wait() until a token is available or the
// context is cancelled.
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens refilled per second
	lastTime time.Time
}

// NewTokenBucket creates a rate limiter with the given capacity and refill rate.
func NewTokenBucket(capacity, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled. It never
// retries the underlying call — it only paces acquisition of permission
// to make one.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(tb.lastTime).Seconds()
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RateLimiter groups token buckets by RPC call category.
type RateLimiter struct {
	Reads      *TokenBucket // get_object, get_coins
	Events     *TokenBucket // query_events, subscribe_events handshakes
	DevInspect *TokenBucket // dev_inspect simulations
	Submit     *TokenBucket // build_unsigned, execute_signed
}

// NewRateLimiter builds a RateLimiter from per-category rates configured
// by the operator (spec §4.1: limiter is policy-only, tuned to the node's
// published limits).
func NewRateLimiter(readsPerSec, eventsPerSec, devInspectPerSec, submitPerSec float64) *RateLimiter {
	burst := func(rate float64) float64 {
		if rate <= 0 {
			rate = 1
		}
		return rate * 10
	}
	return &RateLimiter{
		Reads:      NewTokenBucket(burst(readsPerSec), readsPerSec),
		Events:     NewTokenBucket(burst(eventsPerSec), eventsPerSec),
		DevInspect: NewTokenBucket(burst(devInspectPerSec), devInspectPerSec),
		Submit:     NewTokenBucket(burst(submitPerSec), submitPerSec),
	}
}
