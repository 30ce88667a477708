package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bookmarkd/bookmarkd/pkg/config"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
)

// ErrCacheDisabled is returned when cache operations are attempted but
// cache is disabled
var ErrCacheDisabled = fmt.Errorf("cache is disabled")

const rankingKey = "image:ranking"

// Cache wraps Redis for view counters and rankings. A nil *Cache is valid
// and reports ErrCacheDisabled everywhere, so callers can degrade.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// NamespaceKey prefixes a key with the application namespace
func NamespaceKey(key string) string {
	return "bookmarkd:" + key
}

// viewsKey builds the per-image view counter key
func viewsKey(imageID int64) string {
	return NamespaceKey("image:views:" + strconv.FormatInt(imageID, 10))
}

// IncrementImageViews bumps an image's view counter and its position in
// the most-viewed ranking, returning the new view total.
func (c *Cache) IncrementImageViews(ctx context.Context, imageID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, ErrCacheDisabled
	}
	views, err := c.client.Incr(ctx, viewsKey(imageID)).Result()
	if err != nil {
		return 0, err
	}
	member := strconv.FormatInt(imageID, 10)
	if err := c.client.ZIncrBy(ctx, NamespaceKey(rankingKey), 1, member).Err(); err != nil {
		return 0, err
	}
	return views, nil
}

// ImageViews returns an image's view total
func (c *Cache) ImageViews(ctx context.Context, imageID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, ErrCacheDisabled
	}
	views, err := c.client.Get(ctx, viewsKey(imageID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return views, err
}

// MostViewedImages returns image ids ordered by view count descending
func (c *Cache) MostViewedImages(ctx context.Context, limit int) ([]int64, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheDisabled
	}
	members, err := c.client.ZRevRange(ctx, NamespaceKey(rankingKey), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
