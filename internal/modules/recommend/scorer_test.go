package recommend

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gorm.io/datatypes"

	types "github.com/rematerial/rematerial-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func mat(id int64, name, category string, co2 float64, avail types.Availability, source *string, apps ...string) *types.Material {
	return &types.Material{
		ID:                id,
		Name:              name,
		Category:          category,
		Applications:      datatypes.JSONSlice[string](apps),
		SourceBuilding:    source,
		CO2Reduction:      co2,
		LocalAvailability: avail,
	}
}

func TestScoreInsulationScenario(t *testing.T) {
	beam := mat(1, "Steel Beam", "Structural", 20, types.AvailabilityLow, nil, "framing")
	panel := mat(2, "Insulation Panel", "Insulation", 60, types.AvailabilityHigh, strPtr("Old Office"), "insulation panels", "walls")

	r := Score("insulation panels", []string{"insulation"}, []*types.Material{beam, panel})
	if r.Policy != PolicyScored || r.Message != MessageScored {
		t.Fatalf("unexpected policy %q / %q", r.Policy, r.Message)
	}
	if len(r.Items) == 0 || r.Items[0].Material.ID != 2 {
		t.Fatalf("expected insulation first, got %+v", r.Items)
	}
	// 10 reclaimed + 8 required + 3 tag + 2 category + 1 name + 3 high
	if r.Items[0].Score != 27 {
		t.Fatalf("insulation score=%d want 27", r.Items[0].Score)
	}
	for _, it := range r.Items {
		if it.Material.ID == 1 {
			t.Fatalf("beam scored %d and should have been excluded", it.Score)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	for _, n := range []int{1, 2, 6, 7, 8, 20} {
		pool := make([]*types.Material, 0, n)
		for i := 0; i < n; i++ {
			pool = append(pool, mat(int64(i+1), fmt.Sprintf("m%d", i), "Misc", float64(i), types.AvailabilityLow, nil))
		}
		for _, q := range []string{"", "zzz", "misc"} {
			r := Score(q, nil, pool)
			want := n
			if want > MaxResults {
				want = MaxResults
			}
			if len(r.Items) != want {
				t.Fatalf("n=%d q=%q: got %d items want %d", n, q, len(r.Items), want)
			}
		}
	}
	if r := Score("anything", nil, nil); len(r.Items) != 0 {
		t.Fatalf("empty pool: got %d items", len(r.Items))
	}
}

func TestScoreReclaimedDelta(t *testing.T) {
	queries := []string{"", "timber beams", "insulation", "brick facade walls"}
	required := [][]string{nil, {"Structural"}, {"insulation", "masonry"}}
	for _, q := range queries {
		for _, req := range required {
			plain := mat(1, "Oak Beam", "Structural", 50, types.AvailabilityMedium, nil, "beams", "framing")
			reclaimed := mat(1, "Oak Beam", "Structural", 50, types.AvailabilityMedium, strPtr("Mill"), "beams", "framing")
			d := ScoreMaterial(q, req, reclaimed) - ScoreMaterial(q, req, plain)
			if d != 10 {
				t.Fatalf("q=%q req=%v: reclaimed delta=%d", q, req, d)
			}
		}
	}
}

func TestScoreDeterministicAndStable(t *testing.T) {
	pool := []*types.Material{
		mat(1, "A", "Finishes", 10, types.AvailabilityHigh, nil),
		mat(2, "B", "Finishes", 90, types.AvailabilityHigh, nil),
		mat(3, "C", "Finishes", 50, types.AvailabilityHigh, nil),
		mat(4, "D", "Glazing", 70, types.AvailabilityLow, strPtr("School")),
	}
	first := Score("", nil, pool).IDs()
	second := Score("", nil, pool).IDs()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ordering changed (-first +second):\n%s", diff)
	}
	// ties keep catalog order
	if diff := cmp.Diff([]int64{4, 1, 2, 3}, first); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestScoreFallsBackToCO2Ranking(t *testing.T) {
	pool := []*types.Material{
		mat(1, "A", "X", 20, types.AvailabilityLow, nil),
		mat(2, "B", "Y", 80, types.AvailabilityMedium, nil),
		mat(3, "C", "Z", 80, types.AvailabilityLow, nil),
		mat(4, "D", "W", 40, types.AvailabilityLow, strPtr("  ")),
	}
	r := Score("nothing matches", []string{"concrete"}, pool)
	if r.Policy != PolicyCO2Ranked || r.Message != MessageCO2Ranked {
		t.Fatalf("unexpected policy %q", r.Policy)
	}
	if diff := cmp.Diff([]int64{2, 3, 4, 1}, r.IDs()); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestScoreRequiredCategoryEitherDirection(t *testing.T) {
	m := mat(1, "Panel", "Insulation", 0, types.AvailabilityLow, nil)
	if got := ScoreMaterial("", []string{"Thermal Insulation Boards"}, m); got != 8 {
		t.Fatalf("category contained in required: got %d", got)
	}
	if got := ScoreMaterial("", []string{"Glazing"}, m); got != 0 {
		t.Fatalf("unrelated required category: got %d", got)
	}
	if got := ScoreMaterial("", []string{"insul"}, m); got != 8 {
		t.Fatalf("required substring of category: got %d", got)
	}
	m.Category = "Insulation Boards"
	if got := ScoreMaterial("", []string{"insulation"}, m); got != 8 {
		t.Fatalf("category contains required: got %d", got)
	}
	if got := ScoreMaterial("", []string{"  "}, m); got != 0 {
		t.Fatalf("blank required category should not match: got %d", got)
	}
}

func TestScoreApplicationTagsCountedPerTag(t *testing.T) {
	m := mat(1, "Board", "Panels", 0, types.AvailabilityLow, nil, "wall insulation", "roof insulation", "flooring")
	// two tags share "insulation"; category, name and description do not contain it
	if got := ScoreMaterial("insulation", nil, m); got != 6 {
		t.Fatalf("got %d want 6", got)
	}
	// tag contained in token
	if got := ScoreMaterial("subflooring", nil, m); got != 3 {
		t.Fatalf("got %d want 3", got)
	}
}
