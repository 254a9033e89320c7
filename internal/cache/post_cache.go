package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/blog-service/internal/domain"
)

const keyPublished = "posts:published"

// PostCache caches the published-post listing in Redis. The listing is
// identity-independent, so a single key suffices.
type PostCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPostCache returns a new PostCache.
func NewPostCache(rdb *redis.Client, ttl time.Duration) *PostCache {
	return &PostCache{rdb: rdb, ttl: ttl}
}

// GetPublished returns the cached listing, or nil on miss.
func (c *PostCache) GetPublished(ctx context.Context) ([]domain.Post, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, keyPublished).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []domain.Post
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetPublished stores the listing.
func (c *PostCache) SetPublished(ctx context.Context, list []domain.Post) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPublished, b, c.ttl).Err()
}

// Invalidate drops the cached listing after any post mutation.
func (c *PostCache) Invalidate(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, keyPublished).Err()
}
