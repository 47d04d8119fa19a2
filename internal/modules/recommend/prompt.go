package recommend

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

const SystemPrompt = "You are a sustainable circular materials expert. Always respond with valid JSON only, no markdown formatting."

// DefaultQuery is the query used when the caller supplies none.
func DefaultQuery(p *types.Project) string {
	return "I need materials for: " + strings.Join(p.RequiredCategories(), ", ")
}

// EffectiveQuery returns the trimmed caller query, or DefaultQuery when blank.
func EffectiveQuery(p *types.Project, query string) string {
	if q := strings.TrimSpace(query); q != "" {
		return q
	}
	return DefaultQuery(p)
}

// BuildPrompt renders the user message. Identical inputs render identical text.
func BuildPrompt(p *types.Project, query string, materials []*types.Material) (string, error) {
	if p == nil {
		return "", fmt.Errorf("build prompt: nil project")
	}
	if materials == nil {
		materials = []*types.Material{}
	}
	catalog, err := json.MarshalIndent(materials, "", "  ")
	if err != nil {
		return "", fmt.Errorf("build prompt: encode catalog: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are an expert advisor for sustainable circular building materials in the Netherlands.\n\n")
	fmt.Fprintf(&b, "Project: %q\n", p.Name)
	fmt.Fprintf(&b, "Location: %s\n", p.Location)
	fmt.Fprintf(&b, "Type: %s\n", p.ProjectType)
	fmt.Fprintf(&b, "Target CO2 Reduction: %s%%\n", formatPercent(p.TargetCO2Reduction))
	fmt.Fprintf(&b, "Required Materials Categories: %s\n", strings.Join(p.RequiredCategories(), ", "))
	fmt.Fprintf(&b, "Sustainability Goal: %s\n\n", p.SustainabilityGoal)
	fmt.Fprintf(&b, "User Query: %q\n\n", query)
	b.WriteString("Available Materials Database:\n")
	b.Write(catalog)
	b.WriteString("\n\n")
	b.WriteString(`Based on the project requirements and user query, recommend the top 5-7 most suitable materials. Prioritize:
1. Reclaimed/salvaged materials from demolition sites (highest priority)
2. Relevance to required material categories
3. CO2 reduction potential
4. Local availability in Rotterdam/Netherlands
5. Recyclability
6. Cost efficiency
7. Quantity available for project scale

Return ONLY a valid JSON object (no markdown, no extra text):
{
  "message": "Brief explanation of why these materials are recommended for this specific project",
  "reasoning": "Detailed reasoning about how selections meet project goals",
  "materialIds": [id1, id2, id3, id4, id5]
}`)
	return b.String(), nil
}

func formatPercent(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
