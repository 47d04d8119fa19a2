package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/modules/recommend"
	pkgerrors "github.com/rematerial/rematerial-backend/internal/pkg/errors"
)

type recommendFixture struct {
	materials *fakeMaterials
	projects  *fakeProjects
	prefs     *fakePrefs
	reasoner  *stubReasoner
	svc       RecommendationService
}

func newRecommendFixture(t *testing.T, reasoner *stubReasoner) *recommendFixture {
	t.Helper()
	f := &recommendFixture{
		materials: &fakeMaterials{rows: demoCatalog()},
		projects:  &fakeProjects{rows: []*types.Project{demoProject()}},
		prefs:     newFakePrefs(),
		reasoner:  reasoner,
	}
	var r recommend.Reasoner
	if reasoner != nil {
		r = reasoner
	}
	f.svc = NewRecommendationService(testLogger(t), r, f.materials, f.projects, f.prefs)
	return f
}

func TestRecommendProviderPath(t *testing.T) {
	f := newRecommendFixture(t, &stubReasoner{
		raw: "```json\n{\"message\":\"Top picks\",\"reasoning\":\"reclaimed first\",\"materialIds\":[2,1,99,2]}\n```",
	})

	res, err := f.svc.Recommend(context.Background(), 10, "  insulation for walls ")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.UsedFallback {
		t.Fatalf("UsedFallback: want=false reason=%q", res.FallbackReason)
	}
	if res.Message != "Top picks" || res.Reasoning != "reclaimed first" {
		t.Fatalf("message/reasoning: got %q / %q", res.Message, res.Reasoning)
	}
	if diff := cmp.Diff([]int64{2, 1}, res.MaterialIDs); diff != "" {
		t.Fatalf("MaterialIDs mismatch (-want +got):\n%s", diff)
	}
	if res.Query != "insulation for walls" {
		t.Fatalf("Query: got %q", res.Query)
	}
	if res.ProjectName != "Harbour Offices" || res.ProjectID != 10 {
		t.Fatalf("project: got %d %q", res.ProjectID, res.ProjectName)
	}
	if got := f.prefs.count(10); got != 2 {
		t.Fatalf("seeded rows: want=2 got=%d", got)
	}
	p, _ := f.prefs.Get(context.Background(), nil, 10, 2)
	if p == nil || p.PreferenceScore != types.PreferenceSeedScore || p.Selected {
		t.Fatalf("seeded row: got %+v", p)
	}
}

func TestRecommendSeedingIsIdempotent(t *testing.T) {
	f := newRecommendFixture(t, &stubReasoner{raw: `{"message":"m","reasoning":"r","materialIds":[1,2,3]}`})
	ctx := context.Background()

	if _, err := f.svc.Recommend(ctx, 10, ""); err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	if _, err := f.prefs.Upsert(ctx, nil, &types.Preference{ProjectID: 10, MaterialID: 1, PreferenceScore: 9, Selected: true, Notes: "keep"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := f.svc.Recommend(ctx, 10, ""); err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if got := f.prefs.count(10); got != 3 {
		t.Fatalf("rows after two runs: want=3 got=%d", got)
	}
	p, _ := f.prefs.Get(ctx, nil, 10, 1)
	if p.PreferenceScore != 9 || !p.Selected || p.Notes != "keep" {
		t.Fatalf("existing row modified by seeding: %+v", p)
	}
}

func TestRecommendFallbacks(t *testing.T) {
	providerDown := errors.New("connection refused")
	tests := []struct {
		name     string
		reasoner *stubReasoner
		reason   recommend.FallbackReason
	}{
		{name: "malformed output", reasoner: &stubReasoner{raw: "Sure! Here are some materials you might like."}, reason: recommend.ReasonParseFailure},
		{name: "missing ids", reasoner: &stubReasoner{raw: `{"message":"m","reasoning":"r"}`}, reason: recommend.ReasonParseFailure},
		{name: "provider error", reasoner: &stubReasoner{err: providerDown}, reason: recommend.ReasonProviderError},
		{name: "no provider", reasoner: nil, reason: recommend.ReasonProviderError},
		{name: "only unknown ids", reasoner: &stubReasoner{raw: `{"message":"m","reasoning":"r","materialIds":[98,99]}`}, reason: recommend.ReasonNoKnownMaterials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newRecommendFixture(t, tc.reasoner)
			res, err := f.svc.Recommend(context.Background(), 10, "insulation")
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if !res.UsedFallback || res.FallbackReason != tc.reason {
				t.Fatalf("fallback: want reason %q got used=%v reason=%q", tc.reason, res.UsedFallback, res.FallbackReason)
			}
			if res.Message != recommend.MessageScored+recommend.FallbackSuffix {
				t.Fatalf("Message: got %q", res.Message)
			}
			if res.Reasoning != recommend.FallbackReasoning {
				t.Fatalf("Reasoning: got %q", res.Reasoning)
			}
			if len(res.MaterialIDs) == 0 || len(res.MaterialIDs) > recommend.MaxResults {
				t.Fatalf("MaterialIDs length: got %d", len(res.MaterialIDs))
			}
			if res.MaterialIDs[0] != 2 {
				t.Fatalf("top fallback pick: want=2 got=%d", res.MaterialIDs[0])
			}
			if got := f.prefs.count(10); got != len(res.MaterialIDs) {
				t.Fatalf("seeded rows: want=%d got=%d", len(res.MaterialIDs), got)
			}
		})
	}
}

func TestRecommendMalformedOutputForTimberProject(t *testing.T) {
	f := newRecommendFixture(t, &stubReasoner{raw: "Timber is a great choice for this build!"})
	f.projects.rows = []*types.Project{{ID: 20, Name: "Timber Pavilion", RequiredMaterials: []string{"Timber"}}}

	res, err := f.svc.Recommend(context.Background(), 20, "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !res.UsedFallback || res.FallbackReason != recommend.ReasonParseFailure {
		t.Fatalf("fallback: got used=%v reason=%q", res.UsedFallback, res.FallbackReason)
	}
	if res.Query != "I need materials for: Timber" {
		t.Fatalf("Query: got %q", res.Query)
	}
	if len(res.MaterialIDs) == 0 || len(res.MaterialIDs) > recommend.MaxResults {
		t.Fatalf("MaterialIDs length: got %d", len(res.MaterialIDs))
	}
	found := false
	for _, m := range res.Materials {
		if m.ID == 4 && m.Category == "Timber" {
			found = true
		}
	}
	if !found {
		t.Fatalf("timber material missing from fallback result: %v", res.MaterialIDs)
	}
	if got := f.prefs.count(20); got != len(res.MaterialIDs) {
		t.Fatalf("seeded rows: want=%d got=%d", len(res.MaterialIDs), got)
	}
}

func TestRecommendSeedFailureContinues(t *testing.T) {
	f := newRecommendFixture(t, &stubReasoner{raw: `{"message":"m","reasoning":"r","materialIds":[1,2,3]}`})
	f.prefs.failSeeds[2] = errors.New("disk full")

	res, err := f.svc.Recommend(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, res.MaterialIDs); diff != "" {
		t.Fatalf("MaterialIDs mismatch (-want +got):\n%s", diff)
	}
	if got := f.prefs.count(10); got != 2 {
		t.Fatalf("seeded rows: want=2 got=%d", got)
	}
}

func TestRecommendErrors(t *testing.T) {
	f := newRecommendFixture(t, &stubReasoner{})

	_, err := f.svc.Recommend(context.Background(), 0, "")
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("zero id: want ErrInvalidArgument got %v", err)
	}
	if f.projects.calls != 0 || f.materials.calls != 0 || f.prefs.calls != 0 {
		t.Fatalf("store touched on invalid id")
	}

	_, err = f.svc.Recommend(context.Background(), 404, "")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("unknown project: want ErrNotFound got %v", err)
	}
	if f.reasoner.calls != 0 {
		t.Fatalf("reasoner called for unknown project")
	}

	f.materials.listErr = errors.New("db down")
	_, err = f.svc.Recommend(context.Background(), 10, "")
	if !errors.Is(err, pkgerrors.ErrStore) {
		t.Fatalf("catalog failure: want ErrStore got %v", err)
	}
}

func TestRecommendDefaultQuery(t *testing.T) {
	f := newRecommendFixture(t, &stubReasoner{raw: "not json"})
	res, err := f.svc.Recommend(context.Background(), 10, "   ")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := "I need materials for: Insulation, Structural Steel"
	if res.Query != want {
		t.Fatalf("Query: want=%q got=%q", want, res.Query)
	}
}
