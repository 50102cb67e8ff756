package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"eloan-must/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const activePlafondsKey = "eloan:plafonds:active"

// ErrMiss is returned when the cache holds no entry
var ErrMiss = errors.New("cache miss")

// PlafondCache caches the ordered list of active products
type PlafondCache interface {
	GetActive(ctx context.Context) ([]domain.Plafond, error)
	SetActive(ctx context.Context, products []domain.Plafond) error
	Invalidate(ctx context.Context) error
}

type redisPlafondCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewPlafondCache returns a Redis backed cache, or a no-op cache when rdb is nil
func NewPlafondCache(rdb *goredis.Client, ttl time.Duration) PlafondCache {
	if rdb == nil {
		return noopPlafondCache{}
	}
	return &redisPlafondCache{rdb: rdb, ttl: ttl}
}

func (c *redisPlafondCache) GetActive(ctx context.Context) ([]domain.Plafond, error) {
	raw, err := c.rdb.Get(ctx, activePlafondsKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var products []domain.Plafond
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, ErrMiss
	}
	return products, nil
}

func (c *redisPlafondCache) SetActive(ctx context.Context, products []domain.Plafond) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, activePlafondsKey, data, c.ttl).Err()
}

func (c *redisPlafondCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, activePlafondsKey).Err()
}

type noopPlafondCache struct{}

func (noopPlafondCache) GetActive(context.Context) ([]domain.Plafond, error) { return nil, ErrMiss }
func (noopPlafondCache) SetActive(context.Context, []domain.Plafond) error  { return nil }
func (noopPlafondCache) Invalidate(context.Context) error                   { return nil }
