package recommend

import (
	"context"
	"errors"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

type FallbackReason string

const (
	ReasonNone             FallbackReason = ""
	ReasonProviderError    FallbackReason = "provider_error"
	ReasonParseFailure     FallbackReason = "parse_failure"
	ReasonNoKnownMaterials FallbackReason = "no_known_materials"
)

const (
	FallbackSuffix    = " (Using fallback matching)"
	FallbackReasoning = "Fallback selection based on keyword matching"
)

// Decision is the outcome of one provider attempt: either a validated
// recommendation or a fallback trigger, never both.
type Decision struct {
	Recommendation *ProviderRecommendation
	Fallback       FallbackReason
	Err            error
}

func (d Decision) UseFallback() bool { return d.Recommendation == nil }

// Decide makes exactly one provider attempt and validates the answer.
func Decide(ctx context.Context, r Reasoner, p *types.Project, query string, materials []*types.Material) Decision {
	if r == nil {
		return Decision{Fallback: ReasonProviderError, Err: &ProviderError{Op: "ask", Err: ErrProviderDisabled}}
	}
	raw, err := r.Ask(ctx, p, query, materials)
	if err != nil {
		var pe *ProviderError
		if !errors.As(err, &pe) {
			err = &ProviderError{Op: "ask", Err: err}
		}
		return Decision{Fallback: ReasonProviderError, Err: err}
	}
	rec, err := ParseRecommendation(raw)
	if err != nil {
		return Decision{Fallback: ReasonParseFailure, Err: err}
	}
	return Decision{Recommendation: &rec}
}

// Resolve maps ranked ids onto catalog rows, keeping rank order, dropping
// duplicates and unknown ids, and capping at MaxResults. Unknown ids are
// returned in the order seen.
func Resolve(ids []int64, catalog []*types.Material) (resolved []*types.Material, unknown []int64) {
	byID := make(map[int64]*types.Material, len(catalog))
	for _, m := range catalog {
		if m != nil {
			byID[m.ID] = m
		}
	}
	resolved = make([]*types.Material, 0, MaxResults)
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		if len(resolved) < MaxResults {
			resolved = append(resolved, m)
		}
	}
	return resolved, unknown
}
