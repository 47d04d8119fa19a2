package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/http/response"
	pkgerrors "github.com/rematerial/rematerial-backend/internal/pkg/errors"
	"github.com/rematerial/rematerial-backend/internal/services"
)

// bodyID accepts a JSON number or a numeric string. Zero means absent.
type bodyID int64

func (b *bodyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*b = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid id %s", pkgerrors.ErrInvalidArgument, string(data))
	}
	*b = bodyID(v)
	return nil
}

type recommendRequest struct {
	ProjectID     bodyID `json:"projectId"`
	SpecificQuery string `json:"specificQuery"`
}

type RecommendHandler struct {
	recs services.RecommendationService
}

func NewRecommendHandler(recs services.RecommendationService) *RecommendHandler {
	return &RecommendHandler{recs: recs}
}

// POST /api/recommend-for-project
func (h *RecommendHandler) RecommendForProject(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, "invalid_request", fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
		return
	}
	if req.ProjectID <= 0 {
		response.RespondServiceError(c, "invalid_argument", fmt.Errorf("%w: Project ID is required", pkgerrors.ErrInvalidArgument))
		return
	}
	res, err := h.recs.Recommend(c.Request.Context(), int64(req.ProjectID), req.SpecificQuery)
	if err != nil {
		response.RespondServiceError(c, "recommendation_failed", err)
		return
	}
	response.RespondOK(c, res)
}
