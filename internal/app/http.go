package app

import (
	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/http"
	httpH "github.com/rematerial/rematerial-backend/internal/http/handlers"
	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Material   *httpH.MaterialHandler
	Project    *httpH.ProjectHandler
	Recommend  *httpH.RecommendHandler
	Preference *httpH.PreferenceHandler
	Stats      *httpH.StatsHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Material:   httpH.NewMaterialHandler(services.Catalog),
		Project:    httpH.NewProjectHandler(services.Catalog, services.Preference, services.Stats),
		Recommend:  httpH.NewRecommendHandler(services.Recommendation),
		Preference: httpH.NewPreferenceHandler(services.Preference),
		Stats:      httpH.NewStatsHandler(services.Stats),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		HealthHandler:     handlers.Health,
		MaterialHandler:   handlers.Material,
		ProjectHandler:    handlers.Project,
		RecommendHandler:  handlers.Recommend,
		PreferenceHandler: handlers.Preference,
		StatsHandler:      handlers.Stats,
	})
}
