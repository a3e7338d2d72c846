package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/models"
)

// NewRedisClient connects and pings within five seconds.
func NewRedisClient(addr string) (*goredis.Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// BookletCache wraps an item source and caches its historical booklets in
// Redis. Booklets never change once published, so only a TTL expires them.
// Difficulty queries pass straight through.
type BookletCache struct {
	source exam.ItemSource
	rdb    goredis.Cmdable
	ttl    time.Duration
	log    *logger.Logger
}

func NewBookletCache(source exam.ItemSource, rdb goredis.Cmdable, ttl time.Duration, log *logger.Logger) *BookletCache {
	return &BookletCache{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		log:    log.With("component", "booklet_cache", "source", source.Name()),
	}
}

func (c *BookletCache) Name() string {
	return c.source.Name()
}

func (c *BookletCache) FetchByDifficulty(ctx context.Context, q exam.ItemQuery) ([]models.Item, error) {
	return c.source.FetchByDifficulty(ctx, q)
}

// FetchByYear serves from Redis when possible. Cache faults are logged and
// fall through to the wrapped source.
func (c *BookletCache) FetchByYear(ctx context.Context, q exam.YearQuery) ([]models.Item, error) {
	key := bookletKey(q)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []models.Item
		jerr := json.Unmarshal(raw, &items)
		if jerr == nil {
			c.log.Debug("booklet cache hit", "key", key, "items", len(items))
			return items, nil
		}
		c.log.Warn("discarding corrupt booklet cache entry", "key", key, "err", jerr)
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("booklet cache unavailable", "key", key, "err", err)
	}

	items, err := c.source.FetchByYear(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return items, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("booklet cache write failed", "key", key, "err", err)
	}
	return items, nil
}

// bookletKey is booklet:<year>:<sorted areas>, with :<limit> appended for
// truncated booklets.
func bookletKey(q exam.YearQuery) string {
	areas := make([]string, 0, len(q.Areas))
	for _, a := range q.Areas {
		areas = append(areas, string(a))
	}
	if len(areas) == 0 {
		areas = append(areas, "all")
	}
	sort.Strings(areas)

	key := fmt.Sprintf("booklet:%d:%s", q.Year, strings.Join(areas, ","))
	if q.Limit > 0 {
		key += fmt.Sprintf(":%d", q.Limit)
	}
	return key
}
