package cache

import (
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local key/value store with expiry. Each instance is
// independent, which is what a harvest session needs. It also serves as the
// Locker when no memcache server is configured.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get retrieves a value, or ErrCacheMiss
func (m *MemoryCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value; a zero expiration never expires
func (m *MemoryCache) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{value: append([]byte(nil), value...)}
	if expiration > 0 {
		item.expiresAt = m.now().Add(expiration)
	}
	m.items[key] = item
	return nil
}

// Delete removes a value
func (m *MemoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Acquire implements Locker
func (m *MemoryCache) Acquire(key, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, ok := m.items[key]; ok && (item.expiresAt.IsZero() || m.now().Before(item.expiresAt)) {
		return false, nil
	}
	item := memoryItem{value: []byte(owner)}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = item
	return true, nil
}

// Release implements Locker
func (m *MemoryCache) Release(key string) error {
	return m.Delete(key)
}
