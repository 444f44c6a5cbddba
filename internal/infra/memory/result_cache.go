package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"quiz-results-service/internal/cachekey"
	"quiz-results-service/internal/domain"
)

// ResultCache is an in-process result cache with per-key expiry. Values are
// held encoded, like in Redis, so callers never share mutable state.
type ResultCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedValue
}

type cachedValue struct {
	value     string
	expiresAt time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	return NewResultCacheWithClock(ttl, time.Now)
}

// NewResultCacheWithClock is test-only for controlling expiry.
func NewResultCacheWithClock(ttl time.Duration, now func() time.Time) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		clock:   now,
		entries: make(map[string]cachedValue),
	}
}

func (c *ResultCache) Put(_ context.Context, entry domain.CacheEntry) error {
	quizID, userID, companyID, err := entry.Identity()
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cachekey.ResultKey(quizID, userID, companyID)] = cachedValue{
		value:     string(data),
		expiresAt: c.clock().Add(c.ttl),
	}
	return nil
}

func (c *ResultCache) GetByPattern(_ context.Context, pattern string) ([]domain.CacheEntry, error) {
	now := c.clock()

	c.mu.RLock()
	keys := make([]string, 0)
	values := make(map[string]string)
	for key, v := range c.entries {
		if !v.expiresAt.After(now) || !cachekey.Match(pattern, key) {
			continue
		}
		keys = append(keys, key)
		values[key] = v.value
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	out := make([]domain.CacheEntry, 0, len(keys))
	for _, key := range keys {
		var entry domain.CacheEntry
		if err := json.Unmarshal([]byte(values[key]), &entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *ResultCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	if !ok || !v.expiresAt.After(c.clock()) {
		return "", false, nil
	}
	return v.value, true, nil
}

func (c *ResultCache) Delete(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(c.entries, key)
	if !v.expiresAt.After(c.clock()) {
		return "", false, nil
	}
	return v.value, true, nil
}
