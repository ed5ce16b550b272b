// internal/domain/models/emergency.go
package models

import (
	"time"
)

// Emergency types with dedicated response templates. Unknown types fall
// back to the default template rather than failing.
const (
	EmergencyOutbreak        = "outbreak"
	EmergencyNaturalDisaster = "natural_disaster"
	EmergencyStaffShortage   = "staff_shortage"
	EmergencySystemFailure   = "system_failure"
)

// Urgency levels for an emergency selection.
const (
	UrgencyHigh     = "high"
	UrgencySevere   = "severe"
	UrgencyCritical = "critical"
)

// EmergencyContext captures the incident an emergency selection responds
// to, and the time box the response must start within.
type EmergencyContext struct {
	EmergencyType     string     `bson:"emergency_type" json:"emergency_type"`
	UrgencyLevel      string     `bson:"urgency_level" json:"urgency_level"`
	Description       string     `bson:"description" json:"description"`
	ImpactAssessment  string     `bson:"impact_assessment,omitempty" json:"impact_assessment,omitempty"`
	TimeWindowMinutes int        `bson:"time_window_minutes" json:"time_window_minutes"`
	ResponseDeadline  time.Time  `bson:"response_deadline" json:"response_deadline"`
	ResponseStartedAt *time.Time `bson:"response_started_at,omitempty" json:"response_started_at,omitempty"`

	Readiness *TeamReadinessAssessment `bson:"readiness,omitempty" json:"readiness,omitempty"`
}

// TeamReadinessAssessment estimates how prepared the assembled team is to
// act immediately. Overall is the average of the availability and
// capability scores; both are in [0,100].
type TeamReadinessAssessment struct {
	AvailabilityScore float64   `bson:"availability_score" json:"availability_score"`
	CapabilityScore   float64   `bson:"capability_score" json:"capability_score"`
	OverallReadiness  float64   `bson:"overall_readiness" json:"overall_readiness"`
	PotentialGaps     []string  `bson:"potential_gaps,omitempty" json:"potential_gaps,omitempty"`
	AssessedAt        time.Time `bson:"assessed_at" json:"assessed_at"`
}

// ReadinessGapThreshold: below this overall readiness the assessment must
// name the gaps that hold the team back.
const ReadinessGapThreshold = 50.0
