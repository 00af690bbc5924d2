// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// staleAfter is how long an idle username keeps its limiter.
const staleAfter = time.Hour

// LoginLimiter throttles password logins per username so a single account
// cannot be brute forced from many addresses.
type LoginLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows perMinute attempts per username with the given
// burst. A non-positive perMinute disables throttling.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Inf,
		burst:    max(burst, 1),
		now:      time.Now,
	}
	if perMinute > 0 {
		l.rate = rate.Limit(float64(perMinute) / 60)
	}
	l.lastSweep = l.now()
	return l
}

// Allow consumes one attempt for username.
func (l *LoginLimiter) Allow(username string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) > staleAfter {
		l.sweep(now)
	}
	e, ok := l.limiters[username]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[username] = e
	}
	e.lastAccess = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// sweep drops limiters idle for staleAfter. Callers hold mu.
func (l *LoginLimiter) sweep(now time.Time) {
	for name, e := range l.limiters {
		if now.Sub(e.lastAccess) > staleAfter {
			delete(l.limiters, name)
		}
	}
	l.lastSweep = now
}
