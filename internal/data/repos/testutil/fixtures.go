package testutil

import (
	"context"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

func SeedMaterial(tb testing.TB, ctx context.Context, tx *gorm.DB, m *types.Material) *types.Material {
	tb.Helper()
	if m == nil {
		m = &types.Material{}
	}
	if m.Name == "" {
		m.Name = "Reclaimed Brick"
	}
	if m.Category == "" {
		m.Category = "Masonry"
	}
	if m.Applications == nil {
		m.Applications = datatypes.JSONSlice[string]{}
	}
	if m.LocalAvailability == "" {
		m.LocalAvailability = types.AvailabilityMedium
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed material: %v", err)
	}
	return m
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, required ...string) *types.Project {
	tb.Helper()
	p := &types.Project{
		Name:              name,
		Location:          "Amsterdam",
		ProjectType:       "Residential",
		RequiredMaterials: datatypes.JSONSlice[string](required),
	}
	if p.RequiredMaterials == nil {
		p.RequiredMaterials = datatypes.JSONSlice[string]{}
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func StrPtr(s string) *string { return &s }
