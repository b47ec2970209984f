package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ListCache keeps the unfiltered first page of each entity list in Redis.
// A nil *ListCache is valid and caches nothing.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewListCache returns a cache writing entries with ttl.
func NewListCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ListCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListCache{client: client, ttl: ttl, logger: logger}
}

func listKey(entity string) string {
	return "catalog:list:" + entity
}

// genKey counts writes to entity. A page loaded under one generation is only
// stored while the counter still holds that value.
func genKey(entity string) string {
	return "catalog:gen:" + entity
}

type cachedPage[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// CachedList serves filters from the cache when possible and otherwise calls
// load, collapsing concurrent misses for the same key and generation. Cache
// failures fall through to load.
func CachedList[T any](ctx context.Context, c *ListCache, entity string, filters ListFilters, load func(context.Context) ([]T, int, error)) ([]T, int, error) {
	if c == nil || !filters.IsDefault() {
		return load(ctx)
	}
	key := listKey(entity)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var page cachedPage[T]
		if jsonErr := json.Unmarshal(raw, &page); jsonErr == nil {
			return page.Items, page.Total, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	gen, err := c.generation(ctx, entity)
	if err != nil {
		c.logger.Warn("catalog cache generation read failed", slog.String("entity", entity), slog.Any("error", err))
		return load(ctx)
	}

	v, err, _ := c.group.Do(key+"@"+gen, func() (any, error) {
		items, total, err := load(ctx)
		if err != nil {
			return nil, err
		}
		page := cachedPage[T]{Items: items, Total: total}
		if payload, err := json.Marshal(page); err == nil {
			c.store(ctx, entity, gen, payload)
		}
		return page, nil
	})
	if err != nil {
		return nil, 0, err
	}
	page := v.(cachedPage[T])
	return page.Items, page.Total, nil
}

func (c *ListCache) generation(ctx context.Context, entity string) (string, error) {
	gen, err := c.client.Get(ctx, genKey(entity)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// store writes payload unless entity was invalidated after gen was read.
func (c *ListCache) store(ctx context.Context, entity, gen string, payload []byte) {
	key := listKey(entity)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(entity)).Result()
		if errors.Is(err, redis.Nil) {
			current, err = "0", nil
		}
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}, genKey(entity))
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("catalog cache write skipped after invalidation", slog.String("key", key))
	default:
		c.logger.Warn("catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

var errStaleGeneration = errors.New("catalog: stale cache generation")

// Invalidate drops the cached lists of the given entities and bumps their
// generation so that loads already in flight do not store their result.
func (c *ListCache) Invalidate(ctx context.Context, entities ...string) {
	if c == nil || len(entities) == 0 {
		return
	}
	keys := make([]string, 0, len(entities))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entities {
			pipe.Incr(ctx, genKey(e))
			pipe.Del(ctx, listKey(e))
			keys = append(keys, listKey(e))
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("catalog cache invalidate failed", slog.Any("keys", keys), slog.Any("error", err))
	}
}
