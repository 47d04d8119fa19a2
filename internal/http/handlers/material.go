package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/http/response"
	"github.com/rematerial/rematerial-backend/internal/services"
)

type MaterialHandler struct {
	catalog services.CatalogService
}

func NewMaterialHandler(catalog services.CatalogService) *MaterialHandler {
	return &MaterialHandler{catalog: catalog}
}

// GET /api/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	rows, err := h.catalog.ListMaterials(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "list_materials_failed", err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/materials/:id
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, err := parseID("material id", c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, "invalid_material_id", err)
		return
	}
	m, err := h.catalog.GetMaterial(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "get_material_failed", err)
		return
	}
	response.RespondOK(c, m)
}
