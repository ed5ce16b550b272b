package balance_test

import (
	"math"
	"testing"

	"github.com/dalemusser/selecthub/internal/app/selection/balance"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"github.com/dalemusser/selecthub/internal/testutil"
)

func TestDefaultBounds(t *testing.T) {
	b := balance.DefaultBounds(6)
	if b[models.ProfessionNursing].Min != 1 {
		t.Errorf("nursing min = %d, want 1", b[models.ProfessionNursing].Min)
	}
	if b[models.ProfessionAdmin].Max != 3 {
		t.Errorf("admin max = %d, want 3", b[models.ProfessionAdmin].Max)
	}

	// Tiny teams still allow one administrator.
	if b := balance.DefaultBounds(1); b[models.ProfessionAdmin].Max != 1 {
		t.Errorf("admin max for team of 1 = %d, want 1", b[models.ProfessionAdmin].Max)
	}
}

func TestCompute_NoViolations(t *testing.T) {
	members := []models.CandidateProfile{
		testutil.Profile("A", "surgery", models.ProfessionNursing),
		testutil.Profile("B", "surgery", models.ProfessionMedical),
	}
	got := balance.Compute(members, balance.DefaultBounds(4))

	if got.BalanceScore != 100 {
		t.Errorf("BalanceScore = %v, want 100", got.BalanceScore)
	}
	if len(got.Categories) != len(models.ProfessionCategories) {
		t.Fatalf("expected %d categories, got %d", len(models.ProfessionCategories), len(got.Categories))
	}
	for _, c := range got.Categories {
		switch c.Category {
		case models.ProfessionNursing, models.ProfessionMedical:
			if c.Count != 1 {
				t.Errorf("%s count = %d, want 1", c.Category, c.Count)
			}
			if c.Percent != 50 {
				t.Errorf("%s percent = %v, want 50", c.Category, c.Percent)
			}
		default:
			if c.Count != 0 {
				t.Errorf("%s count = %d, want 0", c.Category, c.Count)
			}
		}
	}
	if got.ComputedAt.IsZero() {
		t.Error("ComputedAt should be stamped")
	}
}

func TestCompute_ScoresViolations(t *testing.T) {
	// No nurse (min violated) and three administrators on a team whose
	// admin max is two: two violating categories out of six.
	members := []models.CandidateProfile{
		testutil.Profile("A", "ops", models.ProfessionAdmin),
		testutil.Profile("B", "ops", models.ProfessionAdmin),
		testutil.Profile("C", "ops", models.ProfessionAdmin),
		testutil.Profile("D", "surgery", models.ProfessionMedical),
	}
	got := balance.Compute(members, balance.DefaultBounds(4))

	want := 100 - 100*2.0/float64(len(models.ProfessionCategories))
	if math.Abs(got.BalanceScore-want) > 1e-9 {
		t.Errorf("BalanceScore = %v, want %v", got.BalanceScore, want)
	}
}

func TestCompute_EmptyTeam(t *testing.T) {
	got := balance.Compute(nil, balance.DefaultBounds(4))
	// Only the nursing minimum is violated on an empty team.
	want := 100 - 100*1.0/float64(len(models.ProfessionCategories))
	if math.Abs(got.BalanceScore-want) > 1e-9 {
		t.Errorf("BalanceScore = %v, want %v", got.BalanceScore, want)
	}
}

func poolOf(professions ...string) []models.MemberCandidate {
	out := make([]models.MemberCandidate, 0, len(professions))
	for i, prof := range professions {
		p := testutil.Profile("P"+string(rune('A'+i)), "surgery", prof)
		out = append(out, models.MemberCandidate{Profile: p, RecommendationScore: 50})
	}
	return out
}

func TestFilterPool_ExcludesMaxedCategory(t *testing.T) {
	pool := poolOf(models.ProfessionAdmin, models.ProfessionNursing, models.ProfessionMedical)
	bounds := balance.Bounds{
		models.ProfessionAdmin: {Max: 1},
	}
	kept, _ := balance.FilterPool(pool, map[string]int{models.ProfessionAdmin: 1}, bounds)

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept candidates, got %d", len(kept))
	}
	for _, c := range kept {
		if c.Profile.Profession == models.ProfessionAdmin {
			t.Error("maxed-out admin category should be excluded from the pool")
		}
	}
}

func TestFilterPool_UnderMinBonus(t *testing.T) {
	pool := poolOf(models.ProfessionNursing, models.ProfessionMedical)
	bounds := balance.Bounds{
		models.ProfessionNursing: {Min: 1},
	}
	kept, bonus := balance.FilterPool(pool, map[string]int{}, bounds)

	if len(kept) != 2 {
		t.Fatalf("expected the full pool kept, got %d", len(kept))
	}
	if bonus[models.ProfessionNursing] != balance.UnderMinBonus {
		t.Errorf("nursing bonus = %v, want %v", bonus[models.ProfessionNursing], balance.UnderMinBonus)
	}
	if _, ok := bonus[models.ProfessionMedical]; ok {
		t.Error("unconstrained category should carry no bonus")
	}
}

func TestFilterPool_MinSatisfiedNoBonus(t *testing.T) {
	pool := poolOf(models.ProfessionNursing)
	bounds := balance.Bounds{
		models.ProfessionNursing: {Min: 1},
	}
	_, bonus := balance.FilterPool(pool, map[string]int{models.ProfessionNursing: 1}, bounds)
	if len(bonus) != 0 {
		t.Errorf("satisfied minimum should yield no bonus, got %v", bonus)
	}
}
