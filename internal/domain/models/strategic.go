// internal/domain/models/strategic.go
package models

import "time"

// StrategicPlan is the organization-wide transformation plan produced by a
// strategic override. Constraints at this tier are advisory only.
type StrategicPlan struct {
	Objective string `bson:"objective" json:"objective"`
	Scope     string `bson:"scope" json:"scope"`

	Readiness  TransformationReadiness `bson:"readiness" json:"readiness"`
	Commitment ResourceCommitment      `bson:"commitment" json:"commitment"`

	// ExecutiveAlignment scores how aligned the executive layer is behind
	// the objective, 0-100.
	ExecutiveAlignment float64 `bson:"executive_alignment" json:"executive_alignment"`

	// Board-level reporting cadence. Strategic overrides carry no fixed
	// audit reporting deadline, unlike emergency overrides.
	ReportingCadence string `bson:"reporting_cadence" json:"reporting_cadence"`
}

// TransformationReadiness is the average of five organizational sub-scores,
// each normalized to [0,100].
type TransformationReadiness struct {
	OrganizationalReadiness float64   `bson:"organizational_readiness" json:"organizational_readiness"`
	LeadershipCommitment    float64   `bson:"leadership_commitment" json:"leadership_commitment"`
	ResourceAvailability    float64   `bson:"resource_availability" json:"resource_availability"`
	ChangeCapability        float64   `bson:"change_capability" json:"change_capability"`
	StakeholderSupport      float64   `bson:"stakeholder_support" json:"stakeholder_support"`
	Overall                 float64   `bson:"overall" json:"overall"`
	AssessedAt              time.Time `bson:"assessed_at" json:"assessed_at"`
}

// InvestmentPeriod is one slice of the multi-period investment timeline.
type InvestmentPeriod struct {
	Label  string  `bson:"label" json:"label"`
	Amount float64 `bson:"amount" json:"amount"`
}

// ResourceCommitment is the investment plan backing a strategic override.
type ResourceCommitment struct {
	Periods         []InvestmentPeriod `bson:"periods" json:"periods"`
	TotalInvestment float64            `bson:"total_investment" json:"total_investment"`
	ProjectedROI    float64            `bson:"projected_roi" json:"projected_roi"`
}
