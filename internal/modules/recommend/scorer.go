package recommend

import (
	"sort"
	"strings"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

// MaxResults caps every recommendation, whichever path produced it.
const MaxResults = 7

type Policy string

const (
	PolicyScored    Policy = "scored"
	PolicyCO2Ranked Policy = "co2_ranked"
)

const (
	MessageScored    = "Based on your project requirements, I recommend these sustainable materials:"
	MessageCO2Ranked = "Here are top sustainable materials from our demolition database:"
)

const (
	weightReclaimed       = 10
	weightRequiredMatch   = 8
	weightApplicationTag  = 3
	weightCategoryToken   = 2
	weightNameDescription = 1
	weightHighAvailable   = 3
)

type ScoredMaterial struct {
	Material *types.Material
	Score    int
}

// Ranking is the scorer output. Items holds at most MaxResults entries and is
// never empty when the input pool had at least one material.
type Ranking struct {
	Policy  Policy
	Message string
	Items   []ScoredMaterial
}

func (r Ranking) Materials() []*types.Material {
	out := make([]*types.Material, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Material)
	}
	return out
}

func (r Ranking) IDs() []int64 {
	out := make([]int64, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Material.ID)
	}
	return out
}

// Tokenize lower-cases the query and splits it on whitespace.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score ranks materials for query and the project's required categories.
// Ties keep catalog order.
func Score(query string, requiredCategories []string, materials []*types.Material) Ranking {
	tokens := Tokenize(query)
	required := normalizeCategories(requiredCategories)

	pool := make([]ScoredMaterial, 0, len(materials))
	for _, m := range materials {
		if m == nil {
			continue
		}
		pool = append(pool, ScoredMaterial{Material: m, Score: scoreMaterial(tokens, required, m)})
	}

	positive := make([]ScoredMaterial, 0, len(pool))
	for _, it := range pool {
		if it.Score > 0 {
			positive = append(positive, it)
		}
	}
	if len(positive) > 0 {
		sort.SliceStable(positive, func(i, j int) bool { return positive[i].Score > positive[j].Score })
		return Ranking{Policy: PolicyScored, Message: MessageScored, Items: capItems(positive)}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Material.CO2Reduction > pool[j].Material.CO2Reduction
	})
	return Ranking{Policy: PolicyCO2Ranked, Message: MessageCO2Ranked, Items: capItems(pool)}
}

// ScoreMaterial returns the additive score of a single material.
func ScoreMaterial(query string, requiredCategories []string, m *types.Material) int {
	if m == nil {
		return 0
	}
	return scoreMaterial(Tokenize(query), normalizeCategories(requiredCategories), m)
}

func scoreMaterial(tokens []string, required []string, m *types.Material) int {
	score := 0
	if m.IsReclaimed() {
		score += weightReclaimed
	}

	category := strings.ToLower(strings.TrimSpace(m.Category))
	if category != "" {
		for _, req := range required {
			if strings.Contains(category, req) || strings.Contains(req, category) {
				score += weightRequiredMatch
				break
			}
		}
	}

	for _, tag := range m.Applications {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if anyToken(tokens, func(tok string) bool {
			return strings.Contains(tag, tok) || strings.Contains(tok, tag)
		}) {
			score += weightApplicationTag
		}
	}

	if anyToken(tokens, func(tok string) bool { return strings.Contains(category, tok) }) {
		score += weightCategoryToken
	}

	name := strings.ToLower(m.Name)
	desc := strings.ToLower(m.Description)
	if anyToken(tokens, func(tok string) bool {
		return strings.Contains(name, tok) || strings.Contains(desc, tok)
	}) {
		score += weightNameDescription
	}

	if m.HighlyAvailable() {
		score += weightHighAvailable
	}
	return score
}

func anyToken(tokens []string, match func(string) bool) bool {
	for _, tok := range tokens {
		if match(tok) {
			return true
		}
	}
	return false
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func capItems(items []ScoredMaterial) []ScoredMaterial {
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}
	return items
}
