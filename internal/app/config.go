package app

import (
	"strings"
	"time"

	"github.com/rematerial/rematerial-backend/internal/data/db"
	"github.com/rematerial/rematerial-backend/internal/platform/envutil"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
	"github.com/rematerial/rematerial-backend/internal/platform/openai"
)

type Config struct {
	Port string

	DB db.Config

	OpenAI openai.Config

	RecommendTimeout time.Duration
	BreakerFailures  uint32
	BreakerCooldown  time.Duration

	RedisAddr       string
	CatalogCacheTTL time.Duration

	SeedFile string

	CORSOrigins []string
	ServiceName string
	Environment string
}

func LoadConfig(log *logger.Logger) Config {
	dsn := envutil.String("DATABASE_URL", "", log)
	if dsn == "" {
		dsn = db.PostgresDSN(
			envutil.String("POSTGRES_HOST", "localhost", log),
			envutil.String("POSTGRES_PORT", "5432", log),
			envutil.String("POSTGRES_USER", "postgres", log),
			envutil.String("POSTGRES_PASSWORD", "", log),
			envutil.String("POSTGRES_NAME", "rematerial", log),
		)
	}

	breakerFailures := envutil.Int("PROVIDER_BREAKER_FAILURES", 5, log)
	if breakerFailures < 0 {
		breakerFailures = 0
	}

	return Config{
		Port: envutil.String("PORT", "3001", log),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres, log),
			DSN:        dsn,
			SQLitePath: envutil.String("SQLITE_PATH", "rematerial.db", log),
		},
		OpenAI: openai.Config{
			APIKey:      strings.TrimSpace(envutil.String("OPENAI_API_KEY", "", nil)),
			BaseURL:     envutil.String("OPENAI_BASE_URL", openai.DefaultBaseURL, log),
			Model:       envutil.String("OPENAI_MODEL", openai.DefaultModel, log),
			Temperature: envutil.Float("OPENAI_TEMPERATURE", openai.DefaultTemperature, log),
			MaxTokens:   envutil.Int("OPENAI_MAX_TOKENS", openai.DefaultMaxTokens, log),
		},
		RecommendTimeout: envutil.Seconds("RECOMMEND_TIMEOUT_SECONDS", 30*time.Second, log),
		BreakerFailures:  uint32(breakerFailures),
		BreakerCooldown:  envutil.Seconds("PROVIDER_BREAKER_COOLDOWN_SECONDS", 30*time.Second, log),
		RedisAddr:        envutil.String("REDIS_ADDR", "", log),
		CatalogCacheTTL:  envutil.Seconds("CATALOG_CACHE_TTL_SECONDS", 5*time.Minute, log),
		SeedFile:         envutil.String("SEED_FILE", "", log),
		CORSOrigins:      envutil.List("CORS_ALLOWED_ORIGINS", nil),
		ServiceName:      envutil.String("OTEL_SERVICE_NAME", "rematerial", log),
		Environment:      envutil.String("APP_ENV", "development", log),
	}
}
