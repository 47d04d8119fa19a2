package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rematerial/rematerial-backend/internal/data/repos"
	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/modules/stats"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type StatsService interface {
	Global(ctx context.Context) (stats.Global, error)
	Project(ctx context.Context, projectID int64) (stats.Project, error)
}

type statsService struct {
	log       *logger.Logger
	materials repos.MaterialRepo
	projects  repos.ProjectRepo
	prefs     repos.PreferenceRepo
}

func NewStatsService(log *logger.Logger, materials repos.MaterialRepo, projects repos.ProjectRepo, prefs repos.PreferenceRepo) StatsService {
	return &statsService{
		log:       log.With("service", "StatsService"),
		materials: materials,
		projects:  projects,
		prefs:     prefs,
	}
}

func (s *statsService) Global(ctx context.Context) (stats.Global, error) {
	var (
		materials    []*types.Material
		projectCount int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.materials.List(gctx, nil)
		if err != nil {
			return storeErr("list materials", err)
		}
		materials = rows
		return nil
	})
	g.Go(func() error {
		n, err := s.projects.Count(gctx, nil)
		if err != nil {
			return storeErr("count projects", err)
		}
		projectCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return stats.Global{}, err
	}
	return stats.Catalog(materials, projectCount), nil
}

func (s *statsService) Project(ctx context.Context, projectID int64) (stats.Project, error) {
	if projectID <= 0 {
		return stats.Project{}, invalidArg("project id must be positive")
	}
	p, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return stats.Project{}, storeErr("get project", err)
	}
	if p == nil {
		return stats.Project{}, notFound("project %d", projectID)
	}

	var (
		prefs    []*types.Preference
		selected []*types.SelectedMaterial
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.prefs.ListByProject(gctx, nil, projectID)
		if err != nil {
			return storeErr("list preferences", err)
		}
		prefs = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.prefs.ListSelectedWithMaterial(gctx, nil, projectID)
		if err != nil {
			return storeErr("list selected materials", err)
		}
		selected = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return stats.Project{}, err
	}
	return stats.ForProject(prefs, selected), nil
}
