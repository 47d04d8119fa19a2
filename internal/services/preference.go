package services

import (
	"context"

	"github.com/rematerial/rematerial-backend/internal/data/repos"
	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/ctxutil"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

// UpsertPreferenceInput carries an explicit user write. Nil fields take the
// column defaults (score 0, unselected, empty notes).
type UpsertPreferenceInput struct {
	ProjectID  int64
	MaterialID int64
	Score      *int
	Selected   *bool
	Notes      *string
}

type PreferenceService interface {
	Upsert(ctx context.Context, in UpsertPreferenceInput) (*types.Preference, error)
	Bump(ctx context.Context, projectID, materialID int64) (*types.Preference, error)
	Delete(ctx context.Context, preferenceID int64) error
	ListByProject(ctx context.Context, projectID int64) ([]*types.Preference, error)
	ListSelectedWithMaterial(ctx context.Context, projectID int64) ([]*types.SelectedMaterial, error)
}

type preferenceService struct {
	log       *logger.Logger
	prefs     repos.PreferenceRepo
	materials repos.MaterialRepo
	projects  repos.ProjectRepo
}

func NewPreferenceService(log *logger.Logger, prefs repos.PreferenceRepo, materials repos.MaterialRepo, projects repos.ProjectRepo) PreferenceService {
	return &preferenceService{
		log:       log.With("service", "PreferenceService"),
		prefs:     prefs,
		materials: materials,
		projects:  projects,
	}
}

func (s *preferenceService) checkPair(ctx context.Context, projectID, materialID int64) error {
	if projectID <= 0 {
		return invalidArg("projectId is required")
	}
	if materialID <= 0 {
		return invalidArg("materialId is required")
	}
	p, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return storeErr("get project", err)
	}
	if p == nil {
		return notFound("project %d", projectID)
	}
	m, err := s.materials.GetByID(ctx, nil, materialID)
	if err != nil {
		return storeErr("get material", err)
	}
	if m == nil {
		return notFound("material %d", materialID)
	}
	return nil
}

func (s *preferenceService) Upsert(ctx context.Context, in UpsertPreferenceInput) (*types.Preference, error) {
	if err := s.checkPair(ctx, in.ProjectID, in.MaterialID); err != nil {
		return nil, err
	}
	row := &types.Preference{
		ProjectID:  in.ProjectID,
		MaterialID: in.MaterialID,
	}
	if in.Score != nil {
		row.PreferenceScore = *in.Score
	}
	if in.Selected != nil {
		row.Selected = *in.Selected
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
	}

	out, err := s.prefs.Upsert(ctx, nil, row)
	if err != nil {
		return nil, storeErr("upsert preference", err)
	}
	if out == nil {
		return nil, storeErr("upsert preference", errMissingRow)
	}
	s.log.Debug("preference upserted", append(ctxutil.LogFields(ctx),
		"project_id", out.ProjectID,
		"material_id", out.MaterialID,
		"score", out.PreferenceScore,
		"selected", out.Selected,
	)...)
	return out, nil
}

func (s *preferenceService) Bump(ctx context.Context, projectID, materialID int64) (*types.Preference, error) {
	if err := s.checkPair(ctx, projectID, materialID); err != nil {
		return nil, err
	}
	out, err := s.prefs.Increment(ctx, nil, projectID, materialID)
	if err != nil {
		return nil, storeErr("increment preference", err)
	}
	if out == nil {
		return nil, storeErr("increment preference", errMissingRow)
	}
	return out, nil
}

func (s *preferenceService) Delete(ctx context.Context, preferenceID int64) error {
	if preferenceID <= 0 {
		return invalidArg("preference id must be positive")
	}
	if err := s.prefs.DeleteByID(ctx, nil, preferenceID); err != nil {
		return storeErr("delete preference", err)
	}
	return nil
}

func (s *preferenceService) ListByProject(ctx context.Context, projectID int64) ([]*types.Preference, error) {
	if projectID <= 0 {
		return nil, invalidArg("project id must be positive")
	}
	rows, err := s.prefs.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, storeErr("list preferences", err)
	}
	if rows == nil {
		rows = []*types.Preference{}
	}
	return rows, nil
}

func (s *preferenceService) ListSelectedWithMaterial(ctx context.Context, projectID int64) ([]*types.SelectedMaterial, error) {
	if projectID <= 0 {
		return nil, invalidArg("project id must be positive")
	}
	rows, err := s.prefs.ListSelectedWithMaterial(ctx, nil, projectID)
	if err != nil {
		return nil, storeErr("list selected materials", err)
	}
	if rows == nil {
		rows = []*types.SelectedMaterial{}
	}
	return rows, nil
}
