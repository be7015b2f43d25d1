package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commentsapp/backend/internal/dto"
	"github.com/commentsapp/backend/internal/logger"
)

// trackedKeySet indexes every cached page key so invalidation can
// delete them without a KEYS scan. The set itself never expires;
// members whose page entries already lapsed are harmless to delete.
const trackedKeySet = "comments:pages"

// KV is the subset of Redis operations the page cache needs
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...interface{}) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// PageCache stores assembled comment pages as JSON blobs
type PageCache struct {
	kv KV
}

// NewPageCache wraps a KV store in a page cache
func NewPageCache(kv KV) *PageCache {
	return &PageCache{kv: kv}
}

// PageKey encodes the full query shape. Every distinct combination of
// pagination and sorting gets its own entry.
func PageKey(page, pageSize int, sortBy string, ascending bool) string {
	return fmt.Sprintf("comments:page:%d:size:%d:sort:%s:asc:%t", page, pageSize, sortBy, ascending)
}

// GetPage returns the cached page for key, with a hit indicator.
// A corrupt entry is treated as a miss and deleted.
func (pc *PageCache) GetPage(ctx context.Context, key string) (*dto.PagedResult, bool, error) {
	raw, err := pc.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result dto.PagedResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.WarnWithFields("Dropping undecodable cache entry: "+key, err)
		_ = pc.kv.Del(ctx, key)
		return nil, false, nil
	}
	return &result, true, nil
}

// SetPage stores a page under key and tracks the key for invalidation
func (pc *PageCache) SetPage(ctx context.Context, key string, result *dto.PagedResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := pc.kv.SetEx(ctx, key, string(raw), ttl); err != nil {
		return err
	}
	return pc.kv.SAdd(ctx, trackedKeySet, key)
}

// Invalidate deletes every tracked page entry along with the tracking set
func (pc *PageCache) Invalidate(ctx context.Context) error {
	keys, err := pc.kv.SMembers(ctx, trackedKeySet)
	if err != nil {
		return err
	}
	return pc.kv.Del(ctx, append(keys, trackedKeySet)...)
}
