package app

import (
	"errors"

	"github.com/rematerial/rematerial-backend/internal/modules/recommend"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
	"github.com/rematerial/rematerial-backend/internal/platform/openai"
	"github.com/rematerial/rematerial-backend/internal/services"
)

type Services struct {
	Catalog        services.CatalogService
	Preference     services.PreferenceService
	Stats          services.StatsService
	Recommendation services.RecommendationService
}

// wireReasoner builds the provider-backed reasoner. Without an API key the
// reasoner is still returned and every recommendation uses fallback matching.
func wireReasoner(log *logger.Logger, cfg Config) (recommend.Reasoner, error) {
	var provider recommend.ChatProvider
	client, err := openai.NewClient(log, cfg.OpenAI)
	switch {
	case err == nil:
		provider = client
		log.Info("reasoning provider enabled", "model", client.Model())
	case errors.Is(err, openai.ErrMissingAPIKey):
		log.Warn("OPENAI_API_KEY not set, recommendations will use fallback matching")
	default:
		return nil, err
	}
	return recommend.NewReasoner(provider, recommend.ReasonerConfig{
		Timeout:         cfg.RecommendTimeout,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
	}, log), nil
}

func wireServices(log *logger.Logger, reposet Repos, reasoner recommend.Reasoner) Services {
	log.Info("Wiring services...")
	return Services{
		Catalog:        services.NewCatalogService(log, reposet.Material, reposet.Project),
		Preference:     services.NewPreferenceService(log, reposet.Preference, reposet.Material, reposet.Project),
		Stats:          services.NewStatsService(log, reposet.Material, reposet.Project, reposet.Preference),
		Recommendation: services.NewRecommendationService(log, reasoner, reposet.Material, reposet.Project, reposet.Preference),
	}
}
