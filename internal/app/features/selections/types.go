// internal/app/features/selections/types.go
package selections

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// Request DTOs. IDs travel as hex strings and are parsed before they reach
// the engines; free-text fields are sanitized in the handlers.

type criteriaDTO struct {
	MinTeamSize    int      `json:"min_team_size"`
	MaxTeamSize    int      `json:"max_team_size"`
	RequiredSkills []string `json:"required_skills"`
}

func (d criteriaDTO) model() models.SelectionCriteria {
	return models.SelectionCriteria{
		MinTeamSize:    d.MinTeamSize,
		MaxTeamSize:    d.MaxTeamSize,
		RequiredSkills: d.RequiredSkills,
	}
}

type scopeDTO struct {
	Department    string   `json:"department"`
	Facility      string   `json:"facility"`
	Skills        []string `json:"skills"`
	OnlyAvailable bool     `json:"only_available"`
}

func (d scopeDTO) filter() selection.ScopeFilter {
	return selection.ScopeFilter{
		Department:    d.Department,
		Facility:      d.Facility,
		Skills:        d.Skills,
		OnlyAvailable: d.OnlyAvailable,
	}
}

type constraintsDTO struct {
	RequiredSkills     []string           `json:"required_skills"`
	PreferredSkills    []string           `json:"preferred_skills"`
	MaxWorkloadPercent float64            `json:"max_workload_percent"`
	MinExperienceYears int                `json:"min_experience_years"`
	DiversityTargets   map[string]float64 `json:"diversity_targets"`
	MaxTotalCost       float64            `json:"max_total_cost"`
}

func (d constraintsDTO) model() models.OptimizationConstraints {
	return models.OptimizationConstraints{
		RequiredSkills:     d.RequiredSkills,
		PreferredSkills:    d.PreferredSkills,
		MaxWorkloadPercent: d.MaxWorkloadPercent,
		MinExperienceYears: d.MinExperienceYears,
		DiversityTargets:   d.DiversityTargets,
		MaxTotalCost:       d.MaxTotalCost,
	}
}

type createRequest struct {
	ProjectID    string      `json:"project_id"`
	OwnerID      string      `json:"owner_id"`
	SupervisorID string      `json:"supervisor_id"`
	CandidateIDs []string    `json:"candidate_ids"`
	Criteria     criteriaDTO `json:"criteria"`
	Reason       string      `json:"reason"`
}

type collaborateRequest struct {
	ProjectID      string      `json:"project_id"`
	OwnerID        string      `json:"owner_id"`
	SupervisorID   string      `json:"supervisor_id"`
	StakeholderIDs []string    `json:"stakeholder_ids"`
	Scope          scopeDTO    `json:"scope"`
	Criteria       criteriaDTO `json:"criteria"`
	TargetTeamSize int         `json:"target_team_size"`
}

type voteDTO struct {
	CandidateID string `json:"candidate_id"`
	Support     string `json:"support"`
}

type voteRequest struct {
	Votes   []voteDTO `json:"votes"`
	Comment string    `json:"comment"`
}

type optimizeRequest struct {
	ProjectID   string         `json:"project_id"`
	Scope       scopeDTO       `json:"scope"`
	Criteria    criteriaDTO    `json:"criteria"`
	Constraints constraintsDTO `json:"constraints"`
}

type emergencyRequest struct {
	ProjectID         string   `json:"project_id"`
	EmergencyType     string   `json:"emergency_type"`
	UrgencyLevel      string   `json:"urgency_level"`
	Description       string   `json:"description"`
	ImpactAssessment  string   `json:"impact_assessment"`
	TimeWindowMinutes int      `json:"time_window_minutes"`
	Scope             scopeDTO `json:"scope"`
}

type periodDTO struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type strategicRequest struct {
	ProjectID        string      `json:"project_id"`
	Objective        string      `json:"objective"`
	Scope            string      `json:"scope"`
	SponsorID        string      `json:"sponsor_id"`
	InvestmentPlan   []periodDTO `json:"investment_plan"`
	ProjectedROI     float64     `json:"projected_roi"`
	ReportingCadence string      `json:"reporting_cadence"`
	Pool             scopeDTO    `json:"pool"`
}

type advanceRequest struct {
	To     string `json:"to"`
	Reason string `json:"reason"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// parseID parses a required hex ObjectID field, naming the field in the
// error so the caller sees which one was bad.
func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: bad object id %q", field, hex)
	}
	return id, nil
}

// parseIDs parses a list of hex ObjectIDs.
func parseIDs(field string, hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := parseID(field, h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
