package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/http/response"
	"github.com/rematerial/rematerial-backend/internal/services"
)

type StatsHandler struct {
	stats services.StatsService
}

func NewStatsHandler(stats services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GET /api/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	out, err := h.stats.Global(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "stats_failed", err)
		return
	}
	response.RespondOK(c, out)
}
