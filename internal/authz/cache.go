// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package authz

import (
	"strings"
	"sync"
	"time"
)

// decisionCache remembers enforcement results for a short time.
type decisionCache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]decision

	stopCh   chan struct{}
	stopOnce sync.Once
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &decisionCache{
		ttl:    ttl,
		now:    time.Now,
		items:  make(map[string]decision),
		stopCh: make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Keys lead with the subject so a user's entries share a prefix.
func cacheKey(sub, dom, act string) string {
	return sub + "|" + dom + "|" + act
}

func (c *decisionCache) get(sub, dom, act string) (allowed, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.items[cacheKey(sub, dom, act)]
	if !ok || c.now().After(d.expiresAt) {
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(sub, dom, act string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey(sub, dom, act)] = decision{allowed: allowed, expiresAt: c.now().Add(c.ttl)}
}

func (c *decisionCache) invalidateUser(sub string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := sub + "|"
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
}

func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *decisionCache) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *decisionCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, d := range c.items {
		if now.After(d.expiresAt) {
			delete(c.items, k)
		}
	}
}

func (c *decisionCache) stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
