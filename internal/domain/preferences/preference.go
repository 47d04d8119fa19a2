package preferences

import (
	"time"

	"github.com/rematerial/rematerial-backend/internal/domain/materials"
)

// SeedScore is the score given to a preference created implicitly by a recommendation.
const SeedScore = 5

// Preference is the per-project, per-material feedback record. At most one row
// exists per (project_id, material_id).
type Preference struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID       int64  `gorm:"column:project_id;not null;uniqueIndex:idx_material_pref_project_material,priority:1" json:"project_id"`
	MaterialID      int64  `gorm:"column:material_id;not null;uniqueIndex:idx_material_pref_project_material,priority:2;index" json:"material_id"`
	PreferenceScore int    `gorm:"column:preference_score;not null" json:"preference_score"`
	Selected        bool   `gorm:"column:selected;not null;index" json:"selected"`
	Notes           string `gorm:"column:notes;not null" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Preference) TableName() string { return "material_preferences" }

// SelectedMaterial pairs a selected preference with its catalog row.
type SelectedMaterial struct {
	Material   *materials.Material `json:"material"`
	Preference *Preference         `json:"preference"`
}
