// internal/app/selection/rank.go
package selection

import (
	"sort"

	"github.com/dalemusser/selecthub/internal/domain/models"
)

// Recommendation-score weights. The blend favors skill fit, then current
// availability, then free capacity, with a small nudge for experience.
const (
	weightSkillMatch   = 0.4
	weightAvailability = 0.3
	weightFreeCapacity = 0.2
	weightExperience   = 0.1

	// experience saturates at this many years for scoring purposes
	experienceCapYears = 20
)

// SkillMatch scores how many of the wanted skills the profile carries,
// as a percentage. No wanted skills means a perfect match.
func SkillMatch(p models.CandidateProfile, wanted []string) float64 {
	if len(wanted) == 0 {
		return 100
	}
	hit := 0
	for _, skill := range wanted {
		if p.HasSkill(skill) {
			hit++
		}
	}
	return 100 * float64(hit) / float64(len(wanted))
}

// BuildCandidates projects directory profiles into scored candidates for
// one query. The projection is transient: callers rank, filter, and throw
// it away; only chosen user ids are ever persisted.
func BuildCandidates(profiles []models.CandidateProfile, criteria models.SelectionCriteria) []models.MemberCandidate {
	out := make([]models.MemberCandidate, 0, len(profiles))
	for _, p := range profiles {
		sm := SkillMatch(p, criteria.RequiredSkills)
		avail := models.AvailabilityScore(p.Availability)
		free := Clamp(100 - p.WorkloadPercent)
		exp := Clamp(100 * float64(p.ExperienceYears) / experienceCapYears)

		out = append(out, models.MemberCandidate{
			Profile:           p,
			SkillMatch:        sm,
			AvailabilityScore: avail,
			RecommendationScore: Clamp(weightSkillMatch*sm +
				weightAvailability*avail +
				weightFreeCapacity*free +
				weightExperience*exp),
		})
	}
	return out
}

// RankCandidates sorts candidates by recommendation score, best first,
// applying any per-profession bonus (profession categories under their
// configured minimum rank higher).
func RankCandidates(candidates []models.MemberCandidate, professionBonus map[string]float64) {
	sort.SliceStable(candidates, func(i, j int) bool {
		si := candidates[i].RecommendationScore + professionBonus[candidates[i].Profile.Profession]
		sj := candidates[j].RecommendationScore + professionBonus[candidates[j].Profile.Profession]
		return si > sj
	})
}
