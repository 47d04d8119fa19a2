package stats

import (
	"math"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

type Global struct {
	Total            int   `json:"total"`
	Reclaimed        int   `json:"reclaimed"`
	LocallyAvailable int   `json:"locallyAvailable"`
	AvgCO2Reduction  int   `json:"avgCo2Reduction"`
	ActiveProjects   int64 `json:"activeProjects"`
}

type Project struct {
	TotalRecommendations int `json:"totalRecommendations"`
	SelectedMaterials    int `json:"selectedMaterials"`
	AverageCO2Reduction  int `json:"averageCo2Reduction"`
}

// Catalog aggregates the material catalog. An empty catalog averages to 0.
func Catalog(materials []*types.Material, projectCount int64) Global {
	out := Global{ActiveProjects: projectCount}
	var sum float64
	for _, m := range materials {
		if m == nil {
			continue
		}
		out.Total++
		if m.IsReclaimed() {
			out.Reclaimed++
		}
		if m.HighlyAvailable() {
			out.LocallyAvailable++
		}
		sum += m.CO2Reduction
	}
	out.AvgCO2Reduction = roundedMean(sum, out.Total)
	return out
}

// ForProject aggregates one project's preferences. selected holds the joined
// selected rows; the CO2 mean is taken over those only.
func ForProject(prefs []*types.Preference, selected []*types.SelectedMaterial) Project {
	out := Project{}
	for _, p := range prefs {
		if p == nil {
			continue
		}
		out.TotalRecommendations++
		if p.Selected {
			out.SelectedMaterials++
		}
	}
	var sum float64
	n := 0
	for _, s := range selected {
		if s == nil || s.Material == nil {
			continue
		}
		sum += s.Material.CO2Reduction
		n++
	}
	out.AverageCO2Reduction = roundedMean(sum, n)
	return out
}

func roundedMean(sum float64, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}
