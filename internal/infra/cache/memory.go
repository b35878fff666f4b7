package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	menu       []byte
	expiryTime time.Time
}

// MemoryMenuCache is the single-process fallback used when Redis is not
// configured.
type MemoryMenuCache struct {
	mutex      sync.RWMutex
	entry      *memoryEntry
	generation uint64
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryMenuCache(ttl time.Duration) *MemoryMenuCache {
	if ttl <= 0 {
		ttl = defaultMenuTTL
	}
	return &MemoryMenuCache{ttl: ttl, now: time.Now}
}

func (c *MemoryMenuCache) Get(_ context.Context) ([]byte, bool, error) {
	c.mutex.RLock()
	entry := c.entry
	c.mutex.RUnlock()

	if entry == nil || !c.now().Before(entry.expiryTime) {
		return nil, false, nil
	}
	return entry.menu, true, nil
}

func (c *MemoryMenuCache) Generation(_ context.Context) (uint64, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.generation, nil
}

func (c *MemoryMenuCache) Set(_ context.Context, generation uint64, menu []byte) (bool, error) {
	stored := make([]byte, len(menu))
	copy(stored, menu)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.generation != generation {
		return false, nil
	}
	c.entry = &memoryEntry{menu: stored, expiryTime: c.now().Add(c.ttl)}
	return true, nil
}

func (c *MemoryMenuCache) Invalidate(_ context.Context) error {
	c.mutex.Lock()
	c.entry = nil
	c.generation++
	c.mutex.Unlock()
	return nil
}
