package materials

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Availability string

const (
	AvailabilityHigh   Availability = "High"
	AvailabilityMedium Availability = "Medium"
	AvailabilityLow    Availability = "Low"
)

// Material is a catalog row. The engine never writes these.
type Material struct {
	ID                int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string                      `gorm:"column:name;not null" json:"name"`
	Category          string                      `gorm:"column:category;not null;index" json:"category"`
	Description       string                      `gorm:"column:description" json:"description"`
	Applications      datatypes.JSONSlice[string] `gorm:"column:applications" json:"applications"`
	SourceBuilding    *string                     `gorm:"column:source_building" json:"source_building"`
	CO2Reduction      float64                     `gorm:"column:co2_reduction;not null" json:"co2_reduction"`
	Recyclability     float64                     `gorm:"column:recyclability;not null" json:"recyclability"`
	LocalAvailability Availability                `gorm:"column:local_availability;index" json:"local_availability"`
	CostIndex         string                      `gorm:"column:cost_index" json:"cost_index"`
	QuantityAvailable *int                        `gorm:"column:quantity_available" json:"quantity_available"`
	Location          string                      `gorm:"column:location" json:"location"`

	CreatedAt time.Time `json:"created_at"`
}

func (Material) TableName() string { return "materials" }

// IsReclaimed reports whether the material carries a source-building reference.
func (m *Material) IsReclaimed() bool {
	return m != nil && m.SourceBuilding != nil && strings.TrimSpace(*m.SourceBuilding) != ""
}

func (m *Material) HighlyAvailable() bool {
	return m != nil && strings.EqualFold(strings.TrimSpace(string(m.LocalAvailability)), string(AvailabilityHigh))
}
