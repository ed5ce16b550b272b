// internal/app/selection/balance/balance.go

// Package balance computes the profession-balance snapshot for a selected
// member set: per-category counts against configured bounds and an overall
// 0-100 balance score. The snapshot is recomputed from the current member
// set on every composition change so it can never be stale.
package balance

import (
	"time"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// Bounds maps profession category to its configured min/max member counts.
// Categories absent from the map are unconstrained.
type Bounds map[string]models.CategoryBounds

// DefaultBounds is a care-team default: at least one nurse, at most half
// the team in administration.
func DefaultBounds(teamSize int) Bounds {
	adminMax := teamSize / 2
	if adminMax < 1 {
		adminMax = 1
	}
	return Bounds{
		models.ProfessionNursing: {Min: 1},
		models.ProfessionAdmin:   {Max: adminMax},
	}
}

// Compute builds the balance snapshot for the given member profiles.
// The score starts at 100 and loses 100/len(categories) per category that
// violates its bounds, clamped to [0,100].
func Compute(members []models.CandidateProfile, bounds Bounds) models.ProfessionBalance {
	counts := make(map[string]int, len(models.ProfessionCategories))
	for _, m := range members {
		counts[m.Profession]++
	}

	total := len(members)
	categories := make([]models.CategoryBalance, 0, len(models.ProfessionCategories))
	violations := 0
	for _, cat := range models.ProfessionCategories {
		b := bounds[cat]
		cb := models.CategoryBalance{
			Category: cat,
			Count:    counts[cat],
			Min:      b.Min,
			Max:      b.Max,
		}
		if total > 0 {
			cb.Percent = 100 * float64(cb.Count) / float64(total)
		}
		if !cb.InBounds() {
			violations++
		}
		categories = append(categories, cb)
	}

	score := 100 - 100*float64(violations)/float64(len(models.ProfessionCategories))
	return models.ProfessionBalance{
		Categories:   categories,
		BalanceScore: selection.Clamp(score),
		ComputedAt:   time.Now().UTC(),
	}
}

// FilterPool applies profession-balance filtering to a candidate pool given
// the professions already selected:
//   - candidates whose category has reached its configured max are excluded
//   - candidates whose category is still under its configured min get a
//     ranking bonus
//
// The returned bonus map is keyed by profession category.
func FilterPool(pool []models.MemberCandidate, selected map[string]int, bounds Bounds) ([]models.MemberCandidate, map[string]float64) {
	kept := make([]models.MemberCandidate, 0, len(pool))
	bonus := make(map[string]float64)

	for _, c := range pool {
		cat := c.Profile.Profession
		b, ok := bounds[cat]
		if !ok {
			kept = append(kept, c)
			continue
		}
		if b.Max > 0 && selected[cat] >= b.Max {
			continue
		}
		if selected[cat] < b.Min {
			bonus[cat] = UnderMinBonus
		}
		kept = append(kept, c)
	}
	return kept, bonus
}

// UnderMinBonus is added to a candidate's recommendation score when their
// profession category is below its configured minimum.
const UnderMinBonus = 10.0
