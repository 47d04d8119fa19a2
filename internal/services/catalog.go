package services

import (
	"context"

	"github.com/rematerial/rematerial-backend/internal/data/repos"
	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type CatalogService interface {
	ListMaterials(ctx context.Context) ([]*types.Material, error)
	GetMaterial(ctx context.Context, id int64) (*types.Material, error)
	ListProjects(ctx context.Context) ([]*types.Project, error)
	GetProject(ctx context.Context, id int64) (*types.Project, error)
}

type catalogService struct {
	log       *logger.Logger
	materials repos.MaterialRepo
	projects  repos.ProjectRepo
}

func NewCatalogService(log *logger.Logger, materials repos.MaterialRepo, projects repos.ProjectRepo) CatalogService {
	return &catalogService{
		log:       log.With("service", "CatalogService"),
		materials: materials,
		projects:  projects,
	}
}

func (s *catalogService) ListMaterials(ctx context.Context) ([]*types.Material, error) {
	rows, err := s.materials.List(ctx, nil)
	if err != nil {
		return nil, storeErr("list materials", err)
	}
	if rows == nil {
		rows = []*types.Material{}
	}
	return rows, nil
}

func (s *catalogService) GetMaterial(ctx context.Context, id int64) (*types.Material, error) {
	if id <= 0 {
		return nil, invalidArg("material id must be positive")
	}
	m, err := s.materials.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr("get material", err)
	}
	if m == nil {
		return nil, notFound("material %d", id)
	}
	return m, nil
}

func (s *catalogService) ListProjects(ctx context.Context) ([]*types.Project, error) {
	rows, err := s.projects.List(ctx, nil)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	if rows == nil {
		rows = []*types.Project{}
	}
	return rows, nil
}

func (s *catalogService) GetProject(ctx context.Context, id int64) (*types.Project, error) {
	if id <= 0 {
		return nil, invalidArg("project id must be positive")
	}
	p, err := s.projects.GetByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if p == nil {
		return nil, notFound("project %d", id)
	}
	return p, nil
}
