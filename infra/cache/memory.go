// Package cache provides processed-event cache implementations: Redis
// for deployments, in-memory for development and tests.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/impactlink/impactlink/pkg/cache"
)

// MemoryEventCache implements cache.EventCache with in-process storage.
type MemoryEventCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryEventCache creates an in-memory event cache.
func NewMemoryEventCache() *MemoryEventCache {
	c := &MemoryEventCache{entries: make(map[string]time.Time)}
	go c.cleanup()
	return c
}

// Seen implements cache.EventCache.
func (c *MemoryEventCache) Seen(_ context.Context, eventID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	expiry, ok := c.entries[eventID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(c.entries, eventID)
		return false, nil
	}
	return true, nil
}

// Mark implements cache.EventCache.
func (c *MemoryEventCache) Mark(_ context.Context, eventID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[eventID] = time.Now().Add(ttl)
	return nil
}

func (c *MemoryEventCache) cleanup() {
	for range time.Tick(time.Minute) {
		now := time.Now()
		c.mu.Lock()
		for id, expiry := range c.entries {
			if now.After(expiry) {
				delete(c.entries, id)
			}
		}
		c.mu.Unlock()
	}
}

// Ensure MemoryEventCache implements the EventCache interface.
var _ cache.EventCache = (*MemoryEventCache)(nil)
