package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/rematerial/rematerial-backend/internal/data/cache"
	"github.com/rematerial/rematerial-backend/internal/data/repos"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type Repos struct {
	Material   repos.MaterialRepo
	Project    repos.ProjectRepo
	Preference repos.PreferenceRepo
}

// wireRepos builds the table repos. When REDIS_ADDR is set the material list
// is served through the redis cache; a failed ping disables the cache.
func wireRepos(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config) (Repos, func() error) {
	log.Info("Wiring repos...")
	materials := repos.NewMaterialRepo(db, log)
	closeCache := func() error { return nil }

	if cfg.RedisAddr != "" {
		kv, closeFn, err := cache.NewRedisKV(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("catalog cache disabled", "redis_addr", cfg.RedisAddr, "error", err)
		} else {
			materials = cache.NewMaterialCache(materials, kv, cfg.CatalogCacheTTL, log)
			closeCache = closeFn
			log.Info("catalog cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.CatalogCacheTTL.String())
		}
	}

	return Repos{
		Material:   materials,
		Project:    repos.NewProjectRepo(db, log),
		Preference: repos.NewPreferenceRepo(db, log),
	}, closeCache
}
