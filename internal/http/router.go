package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/rematerial/rematerial-backend/internal/http/handlers"
	httpMW "github.com/rematerial/rematerial-backend/internal/http/middleware"
	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler     *httpH.HealthHandler
	MaterialHandler   *httpH.MaterialHandler
	ProjectHandler    *httpH.ProjectHandler
	RecommendHandler  *httpH.RecommendHandler
	PreferenceHandler *httpH.PreferenceHandler
	StatsHandler      *httpH.StatsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Health
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.HealthCheck)
		}

		// Materials
		if cfg.MaterialHandler != nil {
			api.GET("/materials", cfg.MaterialHandler.ListMaterials)
			api.GET("/materials/:id", cfg.MaterialHandler.GetMaterial)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			api.GET("/projects", cfg.ProjectHandler.ListProjects)
			api.GET("/projects/:id", cfg.ProjectHandler.GetProject)
			api.GET("/projects/:id/selected-materials", cfg.ProjectHandler.ListSelectedMaterials)
			api.GET("/projects/:id/stats", cfg.ProjectHandler.GetProjectStats)
		}

		// Recommendations
		if cfg.RecommendHandler != nil {
			api.POST("/recommend-for-project", cfg.RecommendHandler.RecommendForProject)
		}

		// Preferences
		if cfg.PreferenceHandler != nil {
			api.GET("/preferences/:projectId", cfg.PreferenceHandler.ListPreferences)
			api.POST("/preferences", cfg.PreferenceHandler.UpsertPreference)
			api.POST("/preferences/bump", cfg.PreferenceHandler.BumpPreference)
			api.DELETE("/preferences/:preferenceId", cfg.PreferenceHandler.DeletePreference)
		}

		// Stats
		if cfg.StatsHandler != nil {
			api.GET("/stats", cfg.StatsHandler.GetStats)
		}
	}

	return r
}
