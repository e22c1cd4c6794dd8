package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    interface{}
	expireAt time.Time
	accessed time.Time
}

func (it *memoryItem) expired() bool {
	return time.Now().After(it.expireAt)
}

// MemoryCache is the in-process Service implementation. When the item
// count reaches the limit the least recently read entry is evicted; a
// background janitor sweeps expired entries.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*memoryItem
	limit   int
	janitor *time.Ticker
}

// Entries with no explicit TTL still expire eventually.
const memoryDefaultTTL = 7 * 24 * time.Hour

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		items:   make(map[string]*memoryItem),
		limit:   cfg.MaxSize,
		janitor: time.NewTicker(cfg.CleanupInterval),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.items) >= mc.limit {
		mc.evictOldest()
	}
	ttl := expiration
	if ttl <= 0 {
		ttl = memoryDefaultTTL
	}
	now := time.Now()
	mc.items[key] = &memoryItem{value: value, expireAt: now.Add(ttl), accessed: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	it, ok := mc.items[key]
	if !ok || it.expired() {
		if ok {
			delete(mc.items, key)
		}
		return ErrCacheMiss
	}
	it.accessed = time.Now()

	if sp, ok := dest.(*string); ok {
		if s, ok := it.value.(string); ok {
			*sp = s
			return nil
		}
	}
	*dest.(*interface{}) = it.value
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.items, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if it, ok := mc.items[key]; ok && !it.expired() {
			return true, nil
		}
	}
	return false, nil
}

// evictOldest drops the least recently read entry. Caller holds mu.
func (mc *MemoryCache) evictOldest() {
	var victim string
	oldest := time.Now()
	for key, it := range mc.items {
		if it.accessed.Before(oldest) {
			oldest = it.accessed
			victim = key
		}
	}
	if victim != "" {
		delete(mc.items, victim)
	}
}

func (mc *MemoryCache) sweep() {
	for range mc.janitor.C {
		now := time.Now()
		mc.mu.Lock()
		for key, it := range mc.items {
			if now.After(it.expireAt) {
				delete(mc.items, key)
			}
		}
		mc.mu.Unlock()
	}
}

// Close stops the janitor.
func (mc *MemoryCache) Close() error {
	if mc.janitor != nil {
		mc.janitor.Stop()
	}
	return nil
}

var _ Service = (*MemoryCache)(nil)
