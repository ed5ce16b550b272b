// internal/domain/models/composition.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SelectionCriteria bounds the size and skill shape of a team selection.
type SelectionCriteria struct {
	MinTeamSize    int      `bson:"min_team_size" json:"min_team_size"`
	MaxTeamSize    int      `bson:"max_team_size" json:"max_team_size"`
	RequiredSkills []string `bson:"required_skills,omitempty" json:"required_skills,omitempty"`
}

// OptimizationConstraints are the hard and soft constraints for one
// optimization run. Immutable per run.
type OptimizationConstraints struct {
	RequiredSkills     []string           `json:"required_skills,omitempty"`
	PreferredSkills    []string           `json:"preferred_skills,omitempty"`
	MaxWorkloadPercent float64            `json:"max_workload_percent,omitempty"`
	MinExperienceYears int                `json:"min_experience_years,omitempty"`
	DiversityTargets   map[string]float64 `json:"diversity_targets,omitempty"`
	MaxTotalCost       float64            `json:"max_total_cost,omitempty"`
}

// CompositionMember is one candidate slotted into a proposed team.
type CompositionMember struct {
	UserID primitive.ObjectID `json:"user_id"`
	Role   string             `json:"role"`
}

// TeamComposition is one scored team proposal produced by the optimizer.
// All sub-scores are normalized to [0,100]; TotalScore is the fitness used
// for ranking.
type TeamComposition struct {
	Members           []CompositionMember `json:"members"`
	SkillCoverage     float64             `json:"skill_coverage"`
	WorkloadBalance   float64             `json:"workload_balance"`
	DiversityScore    float64             `json:"diversity_score"`
	PatternMatch      float64             `json:"pattern_match"`
	TotalScore        float64             `json:"total_score"`
	EstimatedCost     float64             `json:"estimated_cost"`
	EstimatedDuration int                 `json:"estimated_duration_days"`
	OverBudget        bool                `json:"over_budget,omitempty"`
}

// Composition risk kinds.
const (
	RiskSkillGap           = "skill_gap"
	RiskWorkloadImbalance  = "workload_imbalance"
	RiskExperienceShortage = "experience_shortage"
)

// CompositionRisk is a discrete risk derived from a proposed composition,
// paired with a mitigation strategy.
type CompositionRisk struct {
	Kind           string  `json:"kind"`
	Severity       string  `json:"severity"`
	Description    string  `json:"description"`
	Mitigation     string  `json:"mitigation"`
	MitigationCost float64 `json:"mitigation_cost"`
	Effectiveness  float64 `json:"effectiveness"`
}

// GenerationStat records the best and mean fitness of one optimizer
// generation. The elite best is non-decreasing across generations.
type GenerationStat struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
}

// OptimizationResult is the full output of one optimization run.
type OptimizationResult struct {
	Best               TeamComposition   `json:"best"`
	Alternatives       []TeamComposition `json:"alternatives"`
	Insights           []string          `json:"insights"`
	Risks              []CompositionRisk `json:"risks"`
	SuccessProbability float64           `json:"success_probability"`
	Generations        []GenerationStat  `json:"generations,omitempty"`
}
