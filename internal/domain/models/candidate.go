// internal/domain/models/candidate.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability statuses as reported by the staff directory.
const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityOffDuty     = "off_duty"
	AvailabilityUnavailable = "unavailable"
)

// Expertise levels as recorded on a staff profile.
const (
	ExpertiseBeginner     = "beginner"
	ExpertiseIntermediate = "intermediate"
	ExpertiseAdvanced     = "advanced"
	ExpertiseExpert       = "expert"
)

// AvailabilityScore maps a directory availability status to a 0-100 score
// used by readiness assessments.
func AvailabilityScore(status string) float64 {
	switch status {
	case AvailabilityAvailable:
		return 100
	case AvailabilityBusy:
		return 60
	case AvailabilityOffDuty:
		return 30
	}
	return 0
}

// ExpertiseScore maps an expertise level to a 0-100 capability score.
func ExpertiseScore(level string) float64 {
	switch level {
	case ExpertiseExpert:
		return 100
	case ExpertiseAdvanced:
		return 80
	case ExpertiseIntermediate:
		return 60
	case ExpertiseBeginner:
		return 40
	}
	return 40
}

// CandidateProfile is the read-only directory record for one staff member.
// The engine never writes these; the staff directory owns them.
type CandidateProfile struct {
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	FullName        string             `bson:"full_name" json:"full_name"`
	Department      string             `bson:"department" json:"department"`
	Facility        string             `bson:"facility" json:"facility"`
	Profession      string             `bson:"profession" json:"profession"`
	SkillTags       []string           `bson:"skill_tags" json:"skill_tags"`
	ExperienceYears int                `bson:"experience_years" json:"experience_years"`
	ExpertiseLevel  string             `bson:"expertise_level" json:"expertise_level"`
	WorkloadPercent float64            `bson:"workload_percent" json:"workload_percent"`
	MonthlyCost     float64            `bson:"monthly_cost" json:"monthly_cost"`
	Availability    string             `bson:"availability" json:"availability"`
}

// IsAvailable reports whether the profile can take new assignments.
func (p CandidateProfile) IsAvailable() bool {
	return p.Availability == AvailabilityAvailable
}

// HasSkill reports whether the profile carries the given skill tag.
func (p CandidateProfile) HasSkill(skill string) bool {
	for _, s := range p.SkillTags {
		if s == skill {
			return true
		}
	}
	return false
}

// MemberCandidate joins a directory profile with scores derived for one
// query. It is a transient read-projection: recomputed per query, never
// persisted as authoritative state.
type MemberCandidate struct {
	Profile             CandidateProfile `json:"profile"`
	SkillMatch          float64          `json:"skill_match"`
	RecommendationScore float64          `json:"recommendation_score"`
	AvailabilityScore   float64          `json:"availability_score"`
}
