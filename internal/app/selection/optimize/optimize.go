// internal/app/selection/optimize/optimize.go

// Package optimize implements tier 3: population-based team composition.
// A fixed-size population of candidate teams is evolved for a fixed number
// of generations under elitism, crossover, and single-member mutation; the
// best compositions come back scored, with derived risks, mitigations, and
// a success probability.
package optimize

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Defaults applied when the corresponding Config field is zero.
const (
	DefaultPopulationSize = 50
	DefaultGenerations    = 100
	DefaultMutationRate   = 0.10
	DefaultEliteFraction  = 0.20

	// best composition plus this many alternatives are returned
	alternativeCount = 4
)

// Config tunes the search. Seed fixes the random source for reproducible
// runs; zero seeds from the clock.
type Config struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	EliteFraction  float64
	Seed           int64
}

func (c Config) withDefaults() Config {
	if c.PopulationSize <= 0 {
		c.PopulationSize = DefaultPopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = DefaultGenerations
	}
	if c.MutationRate <= 0 {
		c.MutationRate = DefaultMutationRate
	}
	if c.EliteFraction <= 0 {
		c.EliteFraction = DefaultEliteFraction
	}
	return c
}

type Engine struct {
	dir  selection.Directory
	auth selection.Authority
	log  *zap.Logger
	cfg  Config
}

func New(dir selection.Directory, auth selection.Authority, logger *zap.Logger, cfg Config) *Engine {
	return &Engine{dir: dir, auth: auth, log: logger, cfg: cfg.withDefaults()}
}

// SuggestRequest is the optimization run input. Constraints are immutable
// for the run.
type SuggestRequest struct {
	ProjectID   primitive.ObjectID
	RequesterID primitive.ObjectID
	Filter      selection.ScopeFilter
	Criteria    models.SelectionCriteria
	Constraints models.OptimizationConstraints
}

// SuggestOptimalTeam runs the search and returns the best composition,
// its alternatives, insights, a risk assessment, and a success
// probability. The run is advisory: nothing is persisted; the caller feeds
// a chosen composition into a selection operation.
//
// Fails with ErrPermissionDenied (requester below level 3),
// ErrInsufficientCandidates (pool smaller than the minimum team size), or
// ErrConstraintInfeasible (a required skill no pool candidate has).
func (e *Engine) SuggestOptimalTeam(ctx context.Context, req SuggestRequest) (*models.OptimizationResult, error) {
	level, err := e.auth.TierOf(ctx, req.RequesterID)
	if err != nil {
		return nil, err
	}
	if !selectionpolicy.CanRunOptimization(level) {
		return nil, fmt.Errorf("%w: level %d cannot run optimization", selection.ErrPermissionDenied, level)
	}

	minSize := req.Criteria.MinTeamSize
	if minSize <= 0 {
		minSize = 2
	}
	maxSize := req.Criteria.MaxTeamSize
	if maxSize < minSize {
		maxSize = minSize
	}

	filter := req.Filter
	filter.OnlyAvailable = true
	profiles, err := e.dir.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	pool := filterPool(profiles, req.Constraints)

	if len(pool) < minSize {
		return nil, fmt.Errorf("%w: pool of %d for minimum size %d",
			selection.ErrInsufficientCandidates, len(pool), minSize)
	}
	for _, skill := range req.Constraints.RequiredSkills {
		if !anyHasSkill(pool, skill) {
			return nil, fmt.Errorf("%w: no candidate carries required skill %q",
				selection.ErrConstraintInfeasible, skill)
		}
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pop, stats := evolve(rng, pool, minSize, maxSize, req.Constraints, e.cfg)
	ranked := dedupe(pop)

	compositions := make([]models.TeamComposition, 0, alternativeCount+1)
	for _, in := range ranked {
		compositions = append(compositions, toComposition(in, pool))
		if len(compositions) == alternativeCount+1 {
			break
		}
	}

	best := compositions[0]
	risks := assessRisks(best, pool, req.Constraints)

	result := &models.OptimizationResult{
		Best:               best,
		Alternatives:       compositions[1:],
		Risks:              risks,
		Insights:           buildInsights(best, req.Constraints),
		SuccessProbability: successProbability(best, risks),
		Generations:        stats,
	}

	e.log.Info("optimization run complete",
		zap.String("project_id", req.ProjectID.Hex()),
		zap.Int("pool", len(pool)),
		zap.Float64("best_fitness", best.TotalScore),
		zap.Float64("success_probability", result.SuccessProbability))

	return result, nil
}

// filterPool applies the hard per-candidate constraints.
func filterPool(profiles []models.CandidateProfile, cons models.OptimizationConstraints) []models.CandidateProfile {
	kept := make([]models.CandidateProfile, 0, len(profiles))
	for _, p := range profiles {
		if cons.MaxWorkloadPercent > 0 && p.WorkloadPercent > cons.MaxWorkloadPercent {
			continue
		}
		if cons.MinExperienceYears > 0 && p.ExperienceYears < cons.MinExperienceYears {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func anyHasSkill(pool []models.CandidateProfile, skill string) bool {
	for _, p := range pool {
		if p.HasSkill(skill) {
			return true
		}
	}
	return false
}

// dedupe drops individuals with identical member sets, keeping first
// (best) occurrences.
func dedupe(pop []individual) []individual {
	seen := make(map[string]bool, len(pop))
	out := make([]individual, 0, len(pop))
	for i := range pop {
		k := pop[i].key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, pop[i])
	}
	return out
}

// toComposition materializes an individual into the output shape. Roles
// are heuristic: the most experienced member leads, experts slot in as
// specialists, everyone else is a team member.
func toComposition(in individual, pool []models.CandidateProfile) models.TeamComposition {
	team := make([]models.CandidateProfile, len(in.members))
	for i, m := range in.members {
		team[i] = pool[m]
	}
	sort.SliceStable(team, func(i, j int) bool {
		return team[i].ExperienceYears > team[j].ExperienceYears
	})

	members := make([]models.CompositionMember, 0, len(team))
	for i, p := range team {
		role := models.RoleTeamMember
		switch {
		case i == 0:
			role = models.RoleTeamLeader
		case p.ExpertiseLevel == models.ExpertiseExpert:
			role = models.RoleSpecialist
		}
		members = append(members, models.CompositionMember{UserID: p.UserID, Role: role})
	}

	s := in.scores
	return models.TeamComposition{
		Members:           members,
		SkillCoverage:     s.skillCoverage,
		WorkloadBalance:   s.workloadBalance,
		DiversityScore:    s.diversity,
		PatternMatch:      selection.Clamp(100 * s.patternMatch),
		TotalScore:        s.fitness,
		EstimatedCost:     s.cost,
		EstimatedDuration: s.duration,
		OverBudget:        s.overBudget,
	}
}

// Risk severity bands and their deduction from success probability.
const (
	severityLow    = "low"
	severityMedium = "medium"
	severityHigh   = "high"
)

func severityImpact(severity string) float64 {
	switch severity {
	case severityHigh:
		return 15
	case severityMedium:
		return 10
	}
	return 5
}

// assessRisks derives discrete risks from the chosen composition and pairs
// each with a mitigation.
func assessRisks(comp models.TeamComposition, pool []models.CandidateProfile, cons models.OptimizationConstraints) []models.CompositionRisk {
	byID := make(map[primitive.ObjectID]models.CandidateProfile, len(pool))
	for _, p := range pool {
		byID[p.UserID] = p
	}
	team := make([]models.CandidateProfile, 0, len(comp.Members))
	for _, m := range comp.Members {
		team = append(team, byID[m.UserID])
	}

	var risks []models.CompositionRisk

	if comp.SkillCoverage < 100 {
		severity := severityMedium
		if comp.SkillCoverage < 60 {
			severity = severityHigh
		}
		missing := missingSkills(team, cons.RequiredSkills)
		risks = append(risks, models.CompositionRisk{
			Kind:           models.RiskSkillGap,
			Severity:       severity,
			Description:    fmt.Sprintf("required skills not fully covered: %v", missing),
			Mitigation:     "targeted training or a short-term specialist engagement",
			MitigationCost: 2000 * float64(len(missing)),
			Effectiveness:  80,
		})
	}

	if comp.WorkloadBalance < 70 {
		severity := severityMedium
		if comp.WorkloadBalance < 40 {
			severity = severityHigh
		}
		risks = append(risks, models.CompositionRisk{
			Kind:           models.RiskWorkloadImbalance,
			Severity:       severity,
			Description:    "member workloads are unevenly distributed",
			Mitigation:     "rebalance existing assignments before the project starts",
			MitigationCost: 0,
			Effectiveness:  70,
		})
	}

	if avg := meanExperience(team); avg < 3 {
		risks = append(risks, models.CompositionRisk{
			Kind:           models.RiskExperienceShortage,
			Severity:       severityMedium,
			Description:    fmt.Sprintf("mean experience is %.1f years", avg),
			Mitigation:     "pair junior members with a senior advisor",
			MitigationCost: 1500,
			Effectiveness:  75,
		})
	}

	return risks
}

func missingSkills(team []models.CandidateProfile, required []string) []string {
	var missing []string
	for _, skill := range required {
		found := false
		for _, p := range team {
			if p.HasSkill(skill) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, skill)
		}
	}
	return missing
}

func meanExperience(team []models.CandidateProfile) float64 {
	if len(team) == 0 {
		return 0
	}
	var sum float64
	for _, p := range team {
		sum += float64(p.ExperienceYears)
	}
	return sum / float64(len(team))
}

// successProbability blends the historical-similarity base rate with the
// composition's fitness, minus a deduction per identified risk.
func successProbability(comp models.TeamComposition, risks []models.CompositionRisk) float64 {
	base := 50 + 0.4*comp.PatternMatch
	p := 0.5*base + 0.5*comp.TotalScore
	for _, r := range risks {
		p -= severityImpact(r.Severity)
	}
	return selection.Clamp(p)
}

// buildInsights summarizes the best composition for the requester.
func buildInsights(comp models.TeamComposition, cons models.OptimizationConstraints) []string {
	insights := []string{
		fmt.Sprintf("best composition of %d members scores %.1f fitness", len(comp.Members), comp.TotalScore),
		fmt.Sprintf("skill coverage %.0f%%, workload balance %.0f%%, diversity %.0f%%",
			comp.SkillCoverage, comp.WorkloadBalance, comp.DiversityScore),
		fmt.Sprintf("estimated cost %.0f per month over roughly %d days", comp.EstimatedCost, comp.EstimatedDuration),
	}
	if comp.OverBudget {
		insights = append(insights, fmt.Sprintf(
			"estimated cost exceeds the %.0f budget ceiling; fitness was penalized", cons.MaxTotalCost))
	}
	if comp.PatternMatch >= 100 {
		insights = append(insights, "composition fully matches a historically successful role mix")
	}
	return insights
}
