package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Allow checks if a request is allowed right now without blocking
	Allow() bool
	// Wait blocks until the limiter allows another request
	Wait()
	// Reset resets the limiter state
	Reset()
}

// Pacer enforces a fixed minimum interval between successive requests.
// It is the crawl's backpressure mechanism: not adaptive, just a fixed
// sleep between fetches.
type Pacer struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewPacer creates a pacer with the given minimum interval
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Allow reports whether the interval since the previous request has
// elapsed, consuming the slot when it has.
func (p *Pacer) Allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if p.last.IsZero() || now.Sub(p.last) >= p.interval {
		p.last = now
		return true
	}
	return false
}

// Wait blocks until the interval since the previous request has
// elapsed. The first call never blocks.
func (p *Pacer) Wait() {
	p.mu.Lock()
	var sleep time.Duration
	now := time.Now()
	if !p.last.IsZero() {
		if elapsed := now.Sub(p.last); elapsed < p.interval {
			sleep = p.interval - elapsed
		}
	}
	p.last = now.Add(sleep)
	p.mu.Unlock()

	if sleep > 0 {
		time.Sleep(sleep)
	}
}

// Reset clears the pacer so the next request proceeds immediately
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = time.Time{}
}

// TokenBucket implements a token bucket rate limiter. The crawler uses
// it as a per-run request budget on top of the fixed pacing interval.
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		timeUntilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if timeUntilRefill > 0 {
			time.Sleep(timeUntilRefill)
		} else {
			// Small sleep to prevent busy waiting
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
