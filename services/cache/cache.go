package cache

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache: miss")

// Locker hands out short-lived exclusive keys
type Locker interface {
	// Acquire stores key for owner unless someone else holds it. false means
	// the key is taken.
	Acquire(key, owner string, ttl time.Duration) (bool, error)

	// Release drops the key
	Release(key string) error
}
