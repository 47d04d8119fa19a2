package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type fakeMaterials struct {
	rows    []*types.Material
	listErr error
	calls   int
	mu      sync.Mutex
}

func (f *fakeMaterials) List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*types.Material(nil), f.rows...), nil
}

func (f *fakeMaterials) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, m := range f.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMaterials) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Material, error) {
	var out []*types.Material
	for _, id := range ids {
		m, _ := f.GetByID(ctx, tx, id)
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMaterials) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Material) error {
	return errors.New("not supported")
}

type fakeProjects struct {
	rows  []*types.Project
	calls int
	mu    sync.Mutex
}

func (f *fakeProjects) List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]*types.Project(nil), f.rows...), nil
}

func (f *fakeProjects) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProjects) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return int64(len(f.rows)), nil
}

func (f *fakeProjects) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Project) error {
	return errors.New("not supported")
}

// fakePrefs keeps rows keyed by (project, material) the way the unique index does.
type fakePrefs struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[[2]int64]*types.Preference
	failSeeds map[int64]error
	calls     int
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{rows: map[[2]int64]*types.Preference{}, failSeeds: map[int64]error{}}
}

func (f *fakePrefs) Get(ctx context.Context, tx *gorm.DB, projectID, materialID int64) (*types.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if p, ok := f.rows[[2]int64{projectID, materialID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePrefs) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, p := range f.rows {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePrefs) ListByProject(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []*types.Preference
	for _, p := range f.rows {
		if p.ProjectID == projectID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PreferenceScore != out[j].PreferenceScore {
			return out[i].PreferenceScore > out[j].PreferenceScore
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakePrefs) ListSelectedWithMaterial(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.SelectedMaterial, error) {
	return nil, errors.New("use selectedFor")
}

func (f *fakePrefs) Upsert(ctx context.Context, tx *gorm.DB, row *types.Preference) (*types.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := [2]int64{row.ProjectID, row.MaterialID}
	now := time.Now().UTC()
	if p, ok := f.rows[key]; ok {
		p.PreferenceScore = row.PreferenceScore
		p.Selected = row.Selected
		p.Notes = row.Notes
		p.UpdatedAt = now
		cp := *p
		return &cp, nil
	}
	f.nextID++
	stored := *row
	stored.ID = f.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.rows[key] = &stored
	cp := stored
	return &cp, nil
}

func (f *fakePrefs) CreateIfAbsent(ctx context.Context, tx *gorm.DB, projectID, materialID int64, score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.failSeeds[materialID]; err != nil {
		return false, err
	}
	key := [2]int64{projectID, materialID}
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.nextID++
	f.rows[key] = &types.Preference{
		ID:              f.nextID,
		ProjectID:       projectID,
		MaterialID:      materialID,
		PreferenceScore: score,
	}
	return true, nil
}

func (f *fakePrefs) Increment(ctx context.Context, tx *gorm.DB, projectID, materialID int64) (*types.Preference, error) {
	f.mu.Lock()
	key := [2]int64{projectID, materialID}
	if p, ok := f.rows[key]; ok {
		p.PreferenceScore++
		f.mu.Unlock()
		return f.Get(ctx, tx, projectID, materialID)
	}
	f.nextID++
	f.rows[key] = &types.Preference{ID: f.nextID, ProjectID: projectID, MaterialID: materialID, PreferenceScore: 1}
	f.mu.Unlock()
	return f.Get(ctx, tx, projectID, materialID)
}

func (f *fakePrefs) DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for k, p := range f.rows {
		if p.ID == id {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakePrefs) count(projectID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.rows {
		if p.ProjectID == projectID {
			n++
		}
	}
	return n
}

// selectingPrefs joins selected rows with a material fake.
type selectingPrefs struct {
	*fakePrefs
	materials *fakeMaterials
}

func (s *selectingPrefs) ListSelectedWithMaterial(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.SelectedMaterial, error) {
	prefs, _ := s.fakePrefs.ListByProject(ctx, tx, projectID)
	out := []*types.SelectedMaterial{}
	for _, p := range prefs {
		if !p.Selected {
			continue
		}
		m, _ := s.materials.GetByID(ctx, tx, p.MaterialID)
		if m != nil {
			out = append(out, &types.SelectedMaterial{Material: m, Preference: p})
		}
	}
	return out, nil
}

type stubReasoner struct {
	raw   string
	err   error
	calls int
}

func (s *stubReasoner) Ask(ctx context.Context, p *types.Project, query string, materials []*types.Material) (string, error) {
	s.calls++
	return s.raw, s.err
}

func strPtr(s string) *string { return &s }

func demoCatalog() []*types.Material {
	return []*types.Material{
		{ID: 1, Name: "Reclaimed Steel Beams", Category: "Structural Steel", Applications: []string{"structural"},
			SourceBuilding: strPtr("Old Harbour Warehouse"), CO2Reduction: 85, LocalAvailability: types.AvailabilityHigh},
		{ID: 2, Name: "Insulation Panel", Category: "Insulation", Description: "Mineral wool panel",
			Applications: []string{"insulation", "walls"}, SourceBuilding: strPtr("Office Block"), CO2Reduction: 60,
			LocalAvailability: types.AvailabilityHigh},
		{ID: 3, Name: "Recycled Glass Panels", Category: "Glazing", Applications: []string{"facade"},
			CO2Reduction: 40, LocalAvailability: types.AvailabilityMedium},
		{ID: 4, Name: "Cross Laminated Timber", Category: "Timber", Applications: []string{"floors"},
			CO2Reduction: 70, LocalAvailability: types.AvailabilityLow},
	}
}

func demoProject() *types.Project {
	return &types.Project{ID: 10, Name: "Harbour Offices", RequiredMaterials: []string{"Insulation", "Structural Steel"}}
}
