// internal/app/selection/optimize/fitness.go
package optimize

import (
	"math"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// Fitness sub-score weights and heuristics. Fitness is the product
// skillCoverage × workloadBalance × diversity, rescaled to [0,100], with a
// pattern-match bonus and a hard penalty for blowing the budget ceiling.
const (
	overBudgetPenalty = 0.5

	// preferred skills contribute this fraction of the coverage score
	preferredShare = 0.25

	// duration heuristic: baseline project days, shortened by team
	// experience down to a floor
	baseDurationDays  = 90
	daysPerExpYear    = 2.0
	minDurationDays   = 30
	durationExpCapYrs = 20
)

// teamScores carries the sub-scores of one evaluated composition.
type teamScores struct {
	skillCoverage   float64
	workloadBalance float64
	diversity       float64
	patternMatch    float64
	cost            float64
	duration        int
	overBudget      bool
	fitness         float64
}

// scoreTeam evaluates one candidate team against the run's constraints.
func scoreTeam(team []models.CandidateProfile, cons models.OptimizationConstraints) teamScores {
	s := teamScores{
		skillCoverage:   skillCoverage(team, cons.RequiredSkills, cons.PreferredSkills),
		workloadBalance: workloadBalance(team),
		diversity:       diversityScore(team, cons.DiversityTargets),
		patternMatch:    patternMatch(team),
	}
	for _, p := range team {
		s.cost += p.MonthlyCost
	}
	s.duration = estimateDuration(team)
	s.overBudget = cons.MaxTotalCost > 0 && s.cost > cons.MaxTotalCost

	fitness := s.skillCoverage * s.workloadBalance * s.diversity / 10000 * (1 + s.patternMatch)
	if s.overBudget {
		fitness *= overBudgetPenalty
	}
	s.fitness = selection.Clamp(fitness)
	return s
}

// skillCoverage is the percentage of wanted skills the team covers.
// Required skills dominate; preferred skills contribute a smaller share.
func skillCoverage(team []models.CandidateProfile, required, preferred []string) float64 {
	covered := func(skills []string) float64 {
		if len(skills) == 0 {
			return 100
		}
		hit := 0
		for _, skill := range skills {
			for _, p := range team {
				if p.HasSkill(skill) {
					hit++
					break
				}
			}
		}
		return 100 * float64(hit) / float64(len(skills))
	}

	req := covered(required)
	if len(preferred) == 0 {
		return req
	}
	return (1-preferredShare)*req + preferredShare*covered(preferred)
}

// workloadBalance rewards teams whose members carry similar current
// workloads: 100 minus the standard deviation of workload percentages.
func workloadBalance(team []models.CandidateProfile) float64 {
	if len(team) == 0 {
		return 0
	}
	var sum float64
	for _, p := range team {
		sum += p.WorkloadPercent
	}
	mean := sum / float64(len(team))

	var varSum float64
	for _, p := range team {
		d := p.WorkloadPercent - mean
		varSum += d * d
	}
	sigma := math.Sqrt(varSum / float64(len(team)))
	return selection.Clamp(100 - sigma)
}

// diversityScore measures profession spread. Without explicit targets it is
// the fraction of profession categories the team touches; with targets it
// penalizes the distance from each target share.
func diversityScore(team []models.CandidateProfile, targets map[string]float64) float64 {
	if len(team) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, p := range team {
		counts[p.Profession]++
	}

	if len(targets) == 0 {
		want := len(models.ProfessionCategories)
		if len(team) < want {
			want = len(team)
		}
		return selection.Clamp(100 * float64(len(counts)) / float64(want))
	}

	var deviation float64
	for cat, target := range targets {
		actual := 100 * float64(counts[cat]) / float64(len(team))
		deviation += math.Abs(actual - target)
	}
	return selection.Clamp(100 - deviation/float64(len(targets)))
}

// Historical success patterns: role mixes that delivered well in past
// projects, expressed as minimum category presence by team-size band.
var successPatterns = []struct {
	minSize, maxSize int
	categories       []string
}{
	{2, 4, []string{models.ProfessionNursing}},
	{5, 8, []string{models.ProfessionNursing, models.ProfessionMedical}},
	{9, 99, []string{models.ProfessionNursing, models.ProfessionMedical, models.ProfessionAdmin}},
}

// patternMatch returns the [0,1] similarity of the team to the historical
// pattern for its size band: the fraction of the pattern's categories the
// team fills.
func patternMatch(team []models.CandidateProfile) float64 {
	present := make(map[string]bool)
	for _, p := range team {
		present[p.Profession] = true
	}
	for _, pat := range successPatterns {
		if len(team) < pat.minSize || len(team) > pat.maxSize {
			continue
		}
		hit := 0
		for _, cat := range pat.categories {
			if present[cat] {
				hit++
			}
		}
		return float64(hit) / float64(len(pat.categories))
	}
	return 0
}

// estimateDuration shortens the baseline by the team's mean experience.
func estimateDuration(team []models.CandidateProfile) int {
	if len(team) == 0 {
		return baseDurationDays
	}
	var sum float64
	for _, p := range team {
		years := float64(p.ExperienceYears)
		if years > durationExpCapYrs {
			years = durationExpCapYrs
		}
		sum += years
	}
	mean := sum / float64(len(team))

	days := baseDurationDays - int(mean*daysPerExpYear)
	if days < minDurationDays {
		days = minDurationDays
	}
	return days
}
