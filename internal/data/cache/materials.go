package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rematerial/rematerial-backend/internal/data/repos"
	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

const materialListKey = "rematerial:materials:v1"

// KV is the subset of a redis client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ErrMiss is returned by KV.Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

type redisKV struct {
	rdb *goredis.Client
}

// NewRedisKV connects and pings addr.
func NewRedisKV(ctx context.Context, addr string) (KV, func() error, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisKV{rdb: rdb}, rdb.Close, nil
}

func (k *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := k.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (k *redisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return k.rdb.Set(ctx, key, value, ttl).Err()
}

func (k *redisKV) Del(ctx context.Context, keys ...string) error {
	return k.rdb.Del(ctx, keys...).Err()
}

// MaterialCache wraps a MaterialRepo with a read-through cache of the full
// catalog list. Cache failures are logged and fall through to the repo.
type MaterialCache struct {
	repo repos.MaterialRepo
	kv   KV
	ttl  time.Duration
	log  *logger.Logger
}

var _ repos.MaterialRepo = (*MaterialCache)(nil)

func NewMaterialCache(repo repos.MaterialRepo, kv KV, ttl time.Duration, baseLog *logger.Logger) *MaterialCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MaterialCache{
		repo: repo,
		kv:   kv,
		ttl:  ttl,
		log:  baseLog.With("service", "MaterialCache"),
	}
}

func (c *MaterialCache) List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error) {
	if tx != nil || c.kv == nil {
		return c.repo.List(ctx, tx)
	}
	raw, err := c.kv.Get(ctx, materialListKey)
	switch {
	case err == nil:
		observability.Current().IncCatalogCache("hit")
		var out []*types.Material
		uerr := json.Unmarshal(raw, &out)
		if uerr == nil {
			return out, nil
		}
		c.log.Warn("material cache decode failed", "error", uerr)
	case errors.Is(err, ErrMiss):
		observability.Current().IncCatalogCache("miss")
	default:
		observability.Current().IncCatalogCache("error")
		c.log.Warn("material cache read failed", "error", err)
	}

	rows, err := c.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(rows); merr == nil {
		if serr := c.kv.Set(ctx, materialListKey, b, c.ttl); serr != nil {
			c.log.Warn("material cache write failed", "error", serr)
		}
	}
	return rows, nil
}

func (c *MaterialCache) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Material, error) {
	return c.repo.GetByID(ctx, tx, id)
}

func (c *MaterialCache) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Material, error) {
	return c.repo.GetByIDs(ctx, tx, ids)
}

// Upsert writes through. Outside a transaction the cached list is dropped
// right away; inside one the caller must call Invalidate after commit so a
// concurrent List cannot re-cache rows that are not yet visible.
func (c *MaterialCache) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Material) error {
	if err := c.repo.Upsert(ctx, tx, rows); err != nil {
		return err
	}
	if tx == nil {
		c.Invalidate(ctx)
	}
	return nil
}

// Invalidate drops the cached list. Failures are logged; the entry then
// expires with its TTL.
func (c *MaterialCache) Invalidate(ctx context.Context) {
	if c.kv == nil {
		return
	}
	if err := c.kv.Del(ctx, materialListKey); err != nil {
		observability.Current().IncCatalogCache("error")
		c.log.Warn("material cache invalidate failed", "error", err)
	}
}
