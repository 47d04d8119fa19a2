package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rematerial/rematerial-backend/internal/data/repos"
	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/modules/recommend"
	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/ctxutil"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type RecommendationResult struct {
	ProjectID      int64                    `json:"projectId"`
	ProjectName    string                   `json:"projectName"`
	Message        string                   `json:"message"`
	Reasoning      string                   `json:"reasoning"`
	Materials      []*types.Material        `json:"materials"`
	MaterialIDs    []int64                  `json:"materialIds"`
	Query          string                   `json:"query"`
	UsedFallback   bool                     `json:"usedFallback"`
	FallbackReason recommend.FallbackReason `json:"fallbackReason,omitempty"`
}

type RecommendationService interface {
	Recommend(ctx context.Context, projectID int64, query string) (*RecommendationResult, error)
}

type recommendationService struct {
	log       *logger.Logger
	reasoner  recommend.Reasoner
	materials repos.MaterialRepo
	projects  repos.ProjectRepo
	prefs     repos.PreferenceRepo
}

func NewRecommendationService(
	log *logger.Logger,
	reasoner recommend.Reasoner,
	materials repos.MaterialRepo,
	projects repos.ProjectRepo,
	prefs repos.PreferenceRepo,
) RecommendationService {
	return &recommendationService{
		log:       log.With("service", "RecommendationService"),
		reasoner:  reasoner,
		materials: materials,
		projects:  projects,
		prefs:     prefs,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, projectID int64, query string) (*RecommendationResult, error) {
	if projectID <= 0 {
		return nil, invalidArg("projectId is required")
	}

	ctx, span := observability.StartSpan(ctx, "recommendation.recommend", attribute.Int64("project.id", projectID))
	defer span.End()

	out, err := s.recommend(ctx, projectID, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("recommendation.fallback", out.UsedFallback),
		attribute.String("recommendation.fallback_reason", string(out.FallbackReason)),
		attribute.Int("recommendation.count", len(out.MaterialIDs)),
	)
	return out, nil
}

func (s *recommendationService) recommend(ctx context.Context, projectID int64, query string) (*RecommendationResult, error) {
	start := time.Now()
	logf := ctxutil.LogFields(ctx)

	project, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if project == nil {
		return nil, notFound("project %d", projectID)
	}

	catalog, err := s.materials.List(ctx, nil)
	if err != nil {
		return nil, storeErr("list materials", err)
	}
	existing, err := s.prefs.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, storeErr("list preferences", err)
	}

	effective := recommend.EffectiveQuery(project, query)
	result := &RecommendationResult{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Query:       effective,
	}

	decision := recommend.Decide(ctx, s.reasoner, project, effective, catalog)
	var resolved []*types.Material
	if !decision.UseFallback() {
		var unknown []int64
		resolved, unknown = recommend.Resolve(decision.Recommendation.MaterialIDs, catalog)
		if len(unknown) > 0 {
			s.log.Warn("provider returned unknown material ids", append(logf,
				"project_id", projectID,
				"unknown_ids", unknown,
			)...)
			observability.Current().AddUnknownMaterialIDs(len(unknown))
		}
		if len(resolved) == 0 {
			decision = recommend.Decision{Fallback: recommend.ReasonNoKnownMaterials}
		} else {
			result.Message = decision.Recommendation.Message
			result.Reasoning = decision.Recommendation.Reasoning
		}
	}

	if decision.UseFallback() {
		s.log.Warn("using fallback matching", append(logf,
			"project_id", projectID,
			"reason", string(decision.Fallback),
			"error", decision.Err,
			"timeout", isTimeout(decision.Err),
		)...)
		ranking := recommend.Score(effective, project.RequiredCategories(), catalog)
		resolved = ranking.Materials()
		result.Message = ranking.Message + recommend.FallbackSuffix
		result.Reasoning = recommend.FallbackReasoning
		result.UsedFallback = true
		result.FallbackReason = decision.Fallback
		observability.Current().IncFallback(string(decision.Fallback))
		observability.Current().IncRecommendation("fallback")
	} else {
		observability.Current().IncRecommendation("provider")
	}

	result.Materials = resolved
	result.MaterialIDs = make([]int64, 0, len(resolved))
	for _, m := range resolved {
		result.MaterialIDs = append(result.MaterialIDs, m.ID)
	}

	s.seed(ctx, projectID, result.MaterialIDs, existing)

	s.log.Info("recommendation served", append(logf,
		"project_id", projectID,
		"count", len(result.MaterialIDs),
		"fallback", result.UsedFallback,
		"duration_ms", time.Since(start).Milliseconds(),
	)...)
	return result, nil
}

// seed creates an unselected preference for each id the project has no row
// for yet. Failures are logged and counted; they never fail the request.
func (s *recommendationService) seed(ctx context.Context, projectID int64, ids []int64, existing []*types.Preference) {
	have := make(map[int64]bool, len(existing))
	for _, p := range existing {
		if p != nil {
			have[p.MaterialID] = true
		}
	}
	for _, id := range ids {
		if have[id] {
			observability.Current().IncSeedWrite("exists")
			continue
		}
		created, err := s.prefs.CreateIfAbsent(ctx, nil, projectID, id, types.PreferenceSeedScore)
		switch {
		case err != nil:
			observability.Current().IncSeedWrite("failed")
			s.log.Error("seed preference failed", append(ctxutil.LogFields(ctx),
				"project_id", projectID,
				"material_id", id,
				"error", err,
			)...)
		case created:
			observability.Current().IncSeedWrite("created")
		default:
			observability.Current().IncSeedWrite("exists")
		}
	}
}

func isTimeout(err error) bool {
	var pe *recommend.ProviderError
	return errors.As(err, &pe) && pe.Timeout()
}
