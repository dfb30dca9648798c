package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements Locker on a memcache server, so harvests of the
// same source in different processes do not overlap.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Acquire adds key for owner. memcache refuses the add while the key exists.
func (m *MemcacheService) Acquire(key, owner string, ttl time.Duration) (bool, error) {
	err := m.client.Add(&memcache.Item{
		Key:        key,
		Value:      []byte(owner),
		Expiration: int32(ttl.Seconds()),
	})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Release removes the key; a key that already expired is not an error
func (m *MemcacheService) Release(key string) error {
	err := m.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Ping checks that the server is reachable
func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}
