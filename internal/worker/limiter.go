package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Capability names the external APIs the limiter meters independently.
type Capability string

const (
	CapabilityEmbedding Capability = "embedding"
	CapabilityJudge     Capability = "judge"
)

// Limiter implements per-capability rate limiting so a burst of candidate
// verifications cannot starve embedding calls (and vice versa).
type Limiter struct {
	limiters     map[Capability]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a rate limiter with the given defaults for
// capabilities that have no explicit rate configured.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[Capability]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the capability's rate limit clears or ctx is done.
func (l *Limiter) Wait(ctx context.Context, cap Capability) error {
	return l.getLimiter(cap).Wait(ctx)
}

// Allow checks if a request is allowed without waiting.
func (l *Limiter) Allow(cap Capability) bool {
	return l.getLimiter(cap).Allow()
}

// getLimiter returns the rate limiter for a capability
func (l *Limiter) getLimiter(cap Capability) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[cap]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[cap]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[cap] = limiter

	return limiter
}

// SetRate sets a custom rate limit for a specific capability.
func (l *Limiter) SetRate(cap Capability, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[cap] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
