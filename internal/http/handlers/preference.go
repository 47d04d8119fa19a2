package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/http/response"
	pkgerrors "github.com/rematerial/rematerial-backend/internal/pkg/errors"
	"github.com/rematerial/rematerial-backend/internal/services"
)

type upsertPreferenceRequest struct {
	ProjectID       bodyID  `json:"projectId"`
	MaterialID      bodyID  `json:"materialId"`
	PreferenceScore *int    `json:"preference_score"`
	Selected        *bool   `json:"selected"`
	Notes           *string `json:"notes"`
}

type bumpPreferenceRequest struct {
	ProjectID  bodyID `json:"projectId"`
	MaterialID bodyID `json:"materialId"`
}

type PreferenceHandler struct {
	prefs services.PreferenceService
}

func NewPreferenceHandler(prefs services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// GET /api/preferences/:projectId
func (h *PreferenceHandler) ListPreferences(c *gin.Context) {
	id, err := parseID("project id", c.Param("projectId"))
	if err != nil {
		response.RespondServiceError(c, "invalid_project_id", err)
		return
	}
	rows, err := h.prefs.ListByProject(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "list_preferences_failed", err)
		return
	}
	response.RespondOK(c, rows)
}

// POST /api/preferences
func (h *PreferenceHandler) UpsertPreference(c *gin.Context) {
	var req upsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, "invalid_request", fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
		return
	}
	row, err := h.prefs.Upsert(c.Request.Context(), services.UpsertPreferenceInput{
		ProjectID:  int64(req.ProjectID),
		MaterialID: int64(req.MaterialID),
		Score:      req.PreferenceScore,
		Selected:   req.Selected,
		Notes:      req.Notes,
	})
	if err != nil {
		response.RespondServiceError(c, "upsert_preference_failed", err)
		return
	}
	response.RespondOK(c, row)
}

// POST /api/preferences/bump
func (h *PreferenceHandler) BumpPreference(c *gin.Context) {
	var req bumpPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondServiceError(c, "invalid_request", fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
		return
	}
	row, err := h.prefs.Bump(c.Request.Context(), int64(req.ProjectID), int64(req.MaterialID))
	if err != nil {
		response.RespondServiceError(c, "bump_preference_failed", err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /api/preferences/:preferenceId
func (h *PreferenceHandler) DeletePreference(c *gin.Context) {
	id, err := parseID("preference id", c.Param("preferenceId"))
	if err != nil {
		response.RespondServiceError(c, "invalid_preference_id", err)
		return
	}
	if err := h.prefs.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, "delete_preference_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
