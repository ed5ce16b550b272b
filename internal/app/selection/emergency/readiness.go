// internal/app/selection/emergency/readiness.go
package emergency

import (
	"fmt"
	"time"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// AssessReadiness estimates how prepared the assembled team is to act
// immediately: the mean availability score and the mean capability score
// of its members, averaged together. When overall readiness falls below
// the gap threshold the assessment names the concrete gaps.
func AssessReadiness(team []models.CandidateProfile, now time.Time) models.TeamReadinessAssessment {
	if len(team) == 0 {
		return models.TeamReadinessAssessment{
			PotentialGaps: []string{"no members assigned"},
			AssessedAt:    now,
		}
	}

	var availSum, capSum float64
	notAvailable := 0
	juniors := 0
	for _, p := range team {
		availSum += models.AvailabilityScore(p.Availability)
		capSum += models.ExpertiseScore(p.ExpertiseLevel)
		if !p.IsAvailable() {
			notAvailable++
		}
		if p.ExpertiseLevel == models.ExpertiseBeginner {
			juniors++
		}
	}

	n := float64(len(team))
	a := models.TeamReadinessAssessment{
		AvailabilityScore: selection.Clamp(availSum / n),
		CapabilityScore:   selection.Clamp(capSum / n),
		AssessedAt:        now,
	}
	a.OverallReadiness = selection.Clamp((a.AvailabilityScore + a.CapabilityScore) / 2)

	if a.OverallReadiness < models.ReadinessGapThreshold {
		if notAvailable > 0 {
			a.PotentialGaps = append(a.PotentialGaps,
				fmt.Sprintf("%d of %d members are not currently available", notAvailable, len(team)))
		}
		if juniors > 0 {
			a.PotentialGaps = append(a.PotentialGaps,
				fmt.Sprintf("%d members are at beginner expertise", juniors))
		}
		if len(a.PotentialGaps) == 0 {
			a.PotentialGaps = append(a.PotentialGaps, "overall readiness below threshold")
		}
	}
	return a
}
