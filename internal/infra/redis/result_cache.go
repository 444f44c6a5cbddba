package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-results-service/internal/cachekey"
	"quiz-results-service/internal/domain"
)

// DefaultResultTTL is how long a result snapshot stays queryable.
const DefaultResultTTL = 48 * time.Hour

const scanBatch = 500

// ResultCache stores result snapshots as JSON strings:
//
//	SET quiz_result:{quizID}:{userID}:{companyID} {json} EX {ttl}
//
// Queries SCAN with a MATCH pattern and fetch the hits with a single MGET.
// Backend errors are returned as-is; there are no retries here.
//
// A non-positive ttl expires snapshots on write, the same as the in-memory
// cache: Put removes the key instead of storing it without expiry.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Put writes entry under its canonical key, replacing any previous snapshot.
func (c *ResultCache) Put(ctx context.Context, entry domain.CacheEntry) error {
	quizID, userID, companyID, err := entry.Identity()
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := cachekey.ResultKey(quizID, userID, companyID)
	if c.ttl <= 0 {
		return c.client.Del(ctx, key).Err()
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// GetByPattern returns the entries whose keys match pattern, in scan order.
func (c *ResultCache) GetByPattern(ctx context.Context, pattern string) ([]domain.CacheEntry, error) {
	keys, err := c.scan(ctx, pattern)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []domain.CacheEntry{}, nil
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.CacheEntry, 0, len(values))
	for _, v := range values {
		// expired or deleted between SCAN and MGET
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *ResultCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Delete removes key and returns the value it held.
func (c *ResultCache) Delete(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// scan collects matching keys. Redis glob stars cross colons, so hits are
// re-checked segment by segment; SCAN may also repeat keys.
func (c *ResultCache) scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup || !cachekey.Match(pattern, key) {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
