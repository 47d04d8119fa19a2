package seed

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rematerial/rematerial-backend/internal/data/repos"
	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

//go:embed demo.yaml
var demoFS embed.FS

type yamlCatalog struct {
	Version   int            `yaml:"version"`
	Materials []yamlMaterial `yaml:"materials"`
	Projects  []yamlProject  `yaml:"projects"`
}

type yamlMaterial struct {
	ID                int64    `yaml:"id"`
	Name              string   `yaml:"name"`
	Category          string   `yaml:"category"`
	Description       string   `yaml:"description"`
	Applications      []string `yaml:"applications"`
	SourceBuilding    *string  `yaml:"source_building"`
	CO2Reduction      float64  `yaml:"co2_reduction"`
	Recyclability     float64  `yaml:"recyclability"`
	LocalAvailability string   `yaml:"local_availability"`
	CostIndex         string   `yaml:"cost_index"`
	QuantityAvailable *int     `yaml:"quantity_available"`
	Location          string   `yaml:"location"`
}

type yamlProject struct {
	ID                 int64    `yaml:"id"`
	Name               string   `yaml:"name"`
	Location           string   `yaml:"location"`
	ProjectType        string   `yaml:"project_type"`
	TargetCO2Reduction float64  `yaml:"target_co2_reduction"`
	RequiredMaterials  []string `yaml:"required_materials"`
	SustainabilityGoal string   `yaml:"sustainability_goal"`
	SquareMeters       *float64 `yaml:"square_meters"`
	Latitude           *float64 `yaml:"latitude"`
	Longitude          *float64 `yaml:"longitude"`
}

// Catalog is a decoded seed file.
type Catalog struct {
	Materials []*types.Material
	Projects  []*types.Project
}

// Read loads path, or the embedded demo catalog when path is empty.
func Read(path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return demoFS.ReadFile("demo.yaml")
	}
	return os.ReadFile(path)
}

func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("seed: decode yaml: %w", err)
	}
	if err := validate(&raw); err != nil {
		return nil, err
	}

	out := &Catalog{
		Materials: make([]*types.Material, 0, len(raw.Materials)),
		Projects:  make([]*types.Project, 0, len(raw.Projects)),
	}
	for _, m := range raw.Materials {
		apps := datatypes.JSONSlice[string]{}
		for _, a := range m.Applications {
			if a = strings.TrimSpace(a); a != "" {
				apps = append(apps, a)
			}
		}
		out.Materials = append(out.Materials, &types.Material{
			ID:                m.ID,
			Name:              strings.TrimSpace(m.Name),
			Category:          strings.TrimSpace(m.Category),
			Description:       strings.TrimSpace(m.Description),
			Applications:      apps,
			SourceBuilding:    m.SourceBuilding,
			CO2Reduction:      m.CO2Reduction,
			Recyclability:     m.Recyclability,
			LocalAvailability: types.Availability(strings.TrimSpace(m.LocalAvailability)),
			CostIndex:         strings.TrimSpace(m.CostIndex),
			QuantityAvailable: m.QuantityAvailable,
			Location:          strings.TrimSpace(m.Location),
		})
	}
	for _, p := range raw.Projects {
		req := datatypes.JSONSlice[string]{}
		req = append(req, p.RequiredMaterials...)
		out.Projects = append(out.Projects, &types.Project{
			ID:                 p.ID,
			Name:               strings.TrimSpace(p.Name),
			Location:           strings.TrimSpace(p.Location),
			ProjectType:        strings.TrimSpace(p.ProjectType),
			TargetCO2Reduction: p.TargetCO2Reduction,
			RequiredMaterials:  req,
			SustainabilityGoal: strings.TrimSpace(p.SustainabilityGoal),
			SquareMeters:       p.SquareMeters,
			Latitude:           p.Latitude,
			Longitude:          p.Longitude,
		})
	}
	return out, nil
}

func validate(c *yamlCatalog) error {
	seen := map[int64]bool{}
	for i, m := range c.Materials {
		if m.ID <= 0 {
			return fmt.Errorf("seed: materials[%d]: id must be positive", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("seed: materials[%d]: duplicate id %d", i, m.ID)
		}
		seen[m.ID] = true
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Category) == "" {
			return fmt.Errorf("seed: materials[%d]: name and category required", i)
		}
		if m.CO2Reduction < 0 || m.CO2Reduction > 100 {
			return fmt.Errorf("seed: materials[%d]: co2_reduction out of range", i)
		}
		if m.Recyclability < 0 || m.Recyclability > 100 {
			return fmt.Errorf("seed: materials[%d]: recyclability out of range", i)
		}
		switch types.Availability(strings.TrimSpace(m.LocalAvailability)) {
		case types.AvailabilityHigh, types.AvailabilityMedium, types.AvailabilityLow:
		default:
			return fmt.Errorf("seed: materials[%d]: unknown local_availability %q", i, m.LocalAvailability)
		}
	}
	seen = map[int64]bool{}
	for i, p := range c.Projects {
		if p.ID <= 0 {
			return fmt.Errorf("seed: projects[%d]: id must be positive", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("seed: projects[%d]: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("seed: projects[%d]: name required", i)
		}
	}
	return nil
}

// invalidator is implemented by cached repos that must be told about writes
// once they are committed.
type invalidator interface {
	Invalidate(ctx context.Context)
}

// Loader writes a catalog through the repos in a single transaction.
type Loader struct {
	db        *gorm.DB
	materials repos.MaterialRepo
	projects  repos.ProjectRepo
	log       *logger.Logger
}

func NewLoader(db *gorm.DB, materials repos.MaterialRepo, projects repos.ProjectRepo, baseLog *logger.Logger) *Loader {
	return &Loader{
		db:        db,
		materials: materials,
		projects:  projects,
		log:       baseLog.With("service", "SeedLoader"),
	}
}

func (l *Loader) Apply(ctx context.Context, c *Catalog) error {
	if c == nil {
		return nil
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.materials.Upsert(ctx, tx, c.Materials); err != nil {
			return fmt.Errorf("upsert materials: %w", err)
		}
		if err := l.projects.Upsert(ctx, tx, c.Projects); err != nil {
			return fmt.Errorf("upsert projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if inv, ok := l.materials.(invalidator); ok {
		inv.Invalidate(ctx)
	}
	l.log.Info("seed catalog applied", "materials", len(c.Materials), "projects", len(c.Projects))
	return nil
}

// LoadFile reads, parses and applies path (or the embedded demo catalog).
func (l *Loader) LoadFile(ctx context.Context, path string) (*Catalog, error) {
	data, err := Read(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := l.Apply(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
