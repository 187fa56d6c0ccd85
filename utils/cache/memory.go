package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local Store used when Redis is not configured.
// Counters do not survive restarts and are not shared between instances.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an empty in-process cache that sweeps expired keys every minute
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, time.Minute)}
}

// expiration maps a Redis style TTL to go-cache, where zero means the default
func expiration(d time.Duration) time.Duration {
	if d <= 0 {
		return gocache.NoExpiration
	}
	return d
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	default:
		return fmt.Sprint(val), nil
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.items.Set(key, value, expiration(ttl))
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.items.Delete(key)
	}
	return nil
}

func (m *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.items.Get(key)
	return ok, nil
}

// IncrementWithin increments a counter; a new counter expires window from now
// and later increments keep that expiry
func (m *MemoryCache) IncrementWithin(_ context.Context, key string, window time.Duration) (int64, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if err := m.items.Add(key, int64(1), expiration(window)); err == nil {
			return 1, nil
		}

		n, err := m.items.IncrementInt64(key, 1)
		if err == nil {
			return n, nil
		}
		if _, ok := m.items.Get(key); ok {
			return 0, fmt.Errorf("value at %q is not an integer", key)
		}
		// expired between Add and IncrementInt64, start a new window
	}
	return 0, fmt.Errorf("counter %q kept expiring", key)
}

// TTL returns the remaining lifetime, -1 for keys without expiry and -2 for
// missing keys, matching Redis
func (m *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	_, expiresAt, ok := m.items.GetWithExpiration(key)
	if !ok {
		return -2, nil
	}
	if expiresAt.IsZero() {
		return -1, nil
	}
	return time.Until(expiresAt), nil
}
