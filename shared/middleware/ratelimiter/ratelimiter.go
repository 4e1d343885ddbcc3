// Package ratelimiter keeps one token bucket per identity (client IP, user)
// and forgets identities that stay idle for longer than the expiration time.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	timer   *time.Timer
}

// UserRateLimiter manages rate limiting for multiple identities.
type UserRateLimiter struct {
	limiters       map[string]*entry
	mu             sync.Mutex
	rate           rate.Limit
	burst          int
	expirationTime time.Duration
}

// New allows rps requests per second with bursts of up to burst requests
// for every identity.
func New(rps float64, burst int, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*entry),
		rate:           rate.Limit(rps),
		burst:          burst,
		expirationTime: expirationTime,
	}
}

func (url *UserRateLimiter) cleanup(identity string, e *entry) {
	url.mu.Lock()
	defer url.mu.Unlock()
	// entry may have been replaced after Stop
	if url.limiters[identity] == e {
		delete(url.limiters, identity)
	}
}

func (url *UserRateLimiter) getLimiter(identity string) *rate.Limiter {
	url.mu.Lock()
	defer url.mu.Unlock()

	if e, ok := url.limiters[identity]; ok {
		e.timer.Reset(url.expirationTime)
		return e.limiter
	}

	e := &entry{limiter: rate.NewLimiter(url.rate, url.burst)}
	e.timer = time.AfterFunc(url.expirationTime, func() {
		url.cleanup(identity, e)
	})
	url.limiters[identity] = e
	return e.limiter
}

// Allow reports whether a request from identity may proceed now.
func (url *UserRateLimiter) Allow(identity string) bool {
	return url.getLimiter(identity).Allow()
}

// Len is the number of identities currently tracked.
func (url *UserRateLimiter) Len() int {
	url.mu.Lock()
	defer url.mu.Unlock()
	return len(url.limiters)
}

// Stop cleans up all timers
func (url *UserRateLimiter) Stop() {
	url.mu.Lock()
	defer url.mu.Unlock()

	for id, e := range url.limiters {
		e.timer.Stop()
		delete(url.limiters, id)
	}
}
