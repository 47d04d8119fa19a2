package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/http/response"
	"github.com/rematerial/rematerial-backend/internal/services"
)

type ProjectHandler struct {
	catalog services.CatalogService
	prefs   services.PreferenceService
	stats   services.StatsService
}

func NewProjectHandler(catalog services.CatalogService, prefs services.PreferenceService, stats services.StatsService) *ProjectHandler {
	return &ProjectHandler{catalog: catalog, prefs: prefs, stats: stats}
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	rows, err := h.catalog.ListProjects(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "list_projects_failed", err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := parseID("project id", c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, "invalid_project_id", err)
		return
	}
	p, err := h.catalog.GetProject(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "get_project_failed", err)
		return
	}
	response.RespondOK(c, p)
}

// GET /api/projects/:id/selected-materials
func (h *ProjectHandler) ListSelectedMaterials(c *gin.Context) {
	id, err := parseID("project id", c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, "invalid_project_id", err)
		return
	}
	rows, err := h.prefs.ListSelectedWithMaterial(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "list_selected_failed", err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/projects/:id/stats
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	id, err := parseID("project id", c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, "invalid_project_id", err)
		return
	}
	out, err := h.stats.Project(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "project_stats_failed", err)
		return
	}
	response.RespondOK(c, out)
}
