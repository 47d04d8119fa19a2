package projects

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	ID                 int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string                      `gorm:"column:name;not null" json:"name"`
	Location           string                      `gorm:"column:location" json:"location"`
	ProjectType        string                      `gorm:"column:project_type" json:"project_type"`
	TargetCO2Reduction float64                     `gorm:"column:target_co2_reduction" json:"target_co2_reduction"`
	RequiredMaterials  datatypes.JSONSlice[string] `gorm:"column:required_materials" json:"required_materials"`
	SustainabilityGoal string                      `gorm:"column:sustainability_goal" json:"sustainability_goal"`
	SquareMeters       *float64                    `gorm:"column:square_meters" json:"square_meters"`
	Latitude           *float64                    `gorm:"column:latitude" json:"latitude"`
	Longitude          *float64                    `gorm:"column:longitude" json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
}

func (Project) TableName() string { return "building_projects" }

// RequiredCategories returns the trimmed, non-empty required category names in stored order.
func (p *Project) RequiredCategories() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.RequiredMaterials))
	for _, c := range p.RequiredMaterials {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
