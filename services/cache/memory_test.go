package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	mc := NewMemoryCache()

	_, err := mc.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mc.Set("key", []byte("value"), 0))
	value, err := mc.Get("key")
	assert.NoError(t, err)
	assert.Equal(t, "value", string(value))

	assert.NoError(t, mc.Delete("key"))
	_, err = mc.Get("key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mc := NewMemoryCache()
	mc.now = func() time.Time { return now }

	assert.NoError(t, mc.Set("key", []byte("v"), time.Hour))

	now = now.Add(59 * time.Minute)
	_, err := mc.Get("key")
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = mc.Get("key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheInstancesAreIndependent(t *testing.T) {
	a, b := NewMemoryCache(), NewMemoryCache()
	assert.NoError(t, a.Set("key", []byte("v"), 0))

	_, err := b.Get("key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheLocker(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mc := NewMemoryCache()
	mc.now = func() time.Time { return now }

	var locker Locker = mc

	held, err := locker.Acquire("harvest:ics", "a", time.Minute)
	assert.NoError(t, err)
	assert.True(t, held)

	held, err = locker.Acquire("harvest:ics", "b", time.Minute)
	assert.NoError(t, err)
	assert.False(t, held)

	// other keys are independent
	held, _ = locker.Acquire("harvest:contestkorea", "b", time.Minute)
	assert.True(t, held)

	// an expired lock can be taken over
	now = now.Add(time.Minute)
	held, _ = locker.Acquire("harvest:ics", "b", time.Minute)
	assert.True(t, held)

	assert.NoError(t, locker.Release("harvest:ics"))
	held, _ = locker.Acquire("harvest:ics", "c", time.Minute)
	assert.True(t, held)
}
