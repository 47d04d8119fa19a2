package domain

import (
	"github.com/rematerial/rematerial-backend/internal/domain/materials"
	"github.com/rematerial/rematerial-backend/internal/domain/preferences"
	"github.com/rematerial/rematerial-backend/internal/domain/projects"
)

const (
	AvailabilityHigh   = materials.AvailabilityHigh
	AvailabilityMedium = materials.AvailabilityMedium
	AvailabilityLow    = materials.AvailabilityLow

	PreferenceSeedScore = preferences.SeedScore
)

type (
	Material         = materials.Material
	Availability     = materials.Availability
	Project          = projects.Project
	Preference       = preferences.Preference
	SelectedMaterial = preferences.SelectedMaterial
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&materials.Material{},
		&projects.Project{},
		&preferences.Preference{},
	}
}
