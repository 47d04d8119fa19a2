package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rematerial/rematerial-backend/internal/data/db"
	"github.com/rematerial/rematerial-backend/internal/data/seed"
	"github.com/rematerial/rematerial-backend/internal/http"
	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

// SeedDemo selects the embedded demo catalog when used as SEED_FILE.
const SeedDemo = "demo"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	dbService     *db.Service
	closeCache    func() error
	shutdownTrace func(context.Context) error
}

func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdownTrace := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})
	metrics := observability.Init(log)

	dbService, err := db.NewService(log, cfg.DB)
	if err != nil {
		_ = shutdownTrace(ctx)
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbService.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbService.Close()
		_ = shutdownTrace(ctx)
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if sqlDB, err := theDB.DB(); err == nil {
		metrics.RegisterDB(dbService.Driver(), sqlDB)
	}

	reposet, closeCache := wireRepos(ctx, theDB, log, cfg)

	a := &App{
		Log:           log,
		DB:            theDB,
		Cfg:           cfg,
		Repos:         reposet,
		Metrics:       metrics,
		dbService:     dbService,
		closeCache:    closeCache,
		shutdownTrace: shutdownTrace,
	}

	if cfg.SeedFile != "" {
		if _, err := a.Seed(ctx, cfg.SeedFile); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}

	reasoner, err := wireReasoner(log, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init reasoning provider: %w", err)
	}
	a.Services = wireServices(log, reposet, reasoner)
	a.Router = wireRouter(log, cfg, metrics, wireHandlers(log, a.Services))
	return a, nil
}

// Seed loads path into the catalog. SeedDemo or an empty path loads the
// embedded demo catalog.
func (a *App) Seed(ctx context.Context, path string) (*seed.Catalog, error) {
	if path == SeedDemo {
		path = ""
	}
	loader := seed.NewLoader(a.DB, a.Repos.Material, a.Repos.Project, a.Log)
	c, err := loader.LoadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return c, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return (&http.Server{Engine: a.Router}).Run(ctx, addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.closeCache != nil {
		if err := a.closeCache(); err != nil {
			a.Log.Warn("close catalog cache", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			a.Log.Warn("shutdown tracing", "error", err)
		}
	}
	a.Log.Sync()
}
