// Package ratelimit provides a keyed token bucket used to throttle
// vendor API calls and per-client query traffic.
package ratelimit

import (
	"sync"
	"time"
)

type tokenBucket struct {
	tokens   float64
	capacity float64
	// refill is in tokens per second
	refill float64
	seen   time.Time
}

// Limiter tracks one token bucket per key. Buckets are created lazily on
// first use, full.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*tokenBucket)}
}

// Allow consumes one token from the bucket for key if available. The
// capacity and refill rate are fixed on first call for a given key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: capacity, capacity: capacity, refill: refillPerSec, seen: now}
		l.buckets[key] = b
	}
	if dt := now.Sub(b.seen).Seconds(); dt > 0 {
		b.tokens += dt * b.refill
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.seen = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
