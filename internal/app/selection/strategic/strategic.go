// internal/app/selection/strategic/strategic.go

// Package strategic implements tier 5: the executive-only organization-wide
// override. It assembles a governance structure for a transformation
// objective, scores transformation readiness and resource commitment, and
// records the override in the audit ledger. No team-size or budget ceiling
// applies at this tier; constraints are advisory.
package strategic

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultReportingCadence is the board-level cadence recorded when the
// request leaves it unset. Strategic overrides have no fixed reporting
// deadline.
const DefaultReportingCadence = "quarterly"

// workstream leads per department beyond the governance core
const leadsPerDepartment = 1

type Engine struct {
	dir    selection.Directory
	auth   selection.Authority
	repo   selection.Repository
	ledger selection.Ledger
	notify selection.Notifier
	log    *zap.Logger
}

func New(dir selection.Directory, auth selection.Authority, repo selection.Repository, ledger selection.Ledger, notify selection.Notifier, logger *zap.Logger) *Engine {
	return &Engine{dir: dir, auth: auth, repo: repo, ledger: ledger, notify: notify, log: logger}
}

// ExecuteRequest describes the transformation the executive is driving.
type ExecuteRequest struct {
	ProjectID        primitive.ObjectID
	ExecutiveID      primitive.ObjectID
	Objective        string
	Scope            string
	SponsorID        primitive.ObjectID
	InvestmentPlan   []models.InvestmentPeriod
	ProjectedROI     float64
	ReportingCadence string
	Filter           selection.ScopeFilter
}

// Execute performs a strategic override: level-5 authority only. It
// selects a governance structure (program owner, sponsor as supervisor,
// one workstream lead per department in scope), scores the organization's
// transformation readiness, and activates the selection immediately. The
// audit entry carries no reporting deadline; reporting follows the board
// cadence recorded on the plan.
func (e *Engine) Execute(ctx context.Context, req ExecuteRequest) (*models.MemberSelection, error) {
	level, err := e.auth.TierOf(ctx, req.ExecutiveID)
	if err != nil {
		return nil, err
	}
	if !selectionpolicy.CanExecuteStrategic(level) {
		return nil, fmt.Errorf("%w: strategic override requires executive authority, actor is level %d",
			selection.ErrPermissionDenied, level)
	}
	if req.Objective == "" {
		return nil, fmt.Errorf("strategic override needs an objective")
	}

	pool, err := e.dir.Query(ctx, req.Filter)
	if err != nil {
		return nil, err
	}
	leads := pickWorkstreamLeads(pool)

	now := time.Now().UTC()
	cadence := req.ReportingCadence
	if cadence == "" {
		cadence = DefaultReportingCadence
	}

	readiness := AssessTransformationReadiness(pool, len(leads), now)
	commitment := buildCommitment(req.InvestmentPlan, req.ProjectedROI)

	sel := &models.MemberSelection{
		ProjectID:  req.ProjectID,
		SelectorID: req.ExecutiveID,
		Tier:       models.TierStrategic,
		Status:     models.StatusActive,
		Assignments: []models.MemberAssignment{
			{UserID: req.ExecutiveID, Role: models.RoleProjectOwner, Required: true, Reason: "transformation program owner", AssignedAt: now},
			{UserID: req.SponsorID, Role: models.RoleSupervisor, Required: true, Reason: "executive sponsor", AssignedAt: now},
		},
		Strategic: &models.StrategicPlan{
			Objective:          req.Objective,
			Scope:              req.Scope,
			Readiness:          readiness,
			Commitment:         commitment,
			ExecutiveAlignment: alignmentScore(readiness),
			ReportingCadence:   cadence,
		},
	}
	for _, p := range leads {
		sel.Assignments = append(sel.Assignments, models.MemberAssignment{
			UserID:     p.UserID,
			Role:       models.RoleTeamLeader,
			Reason:     fmt.Sprintf("%s workstream lead", p.Department),
			AssignedAt: now,
		})
	}

	if err := e.repo.Create(ctx, sel); err != nil {
		return nil, err
	}

	entry := &models.AuditEntry{
		SelectionID:   sel.ID,
		Action:        models.AuditStrategicOverride,
		ActorID:       req.ExecutiveID,
		Tier:          models.TierStrategic,
		BypassedSteps: []string{models.StatusPendingApproval, models.StatusApproved},
		Justification: req.Objective,
		Details: map[string]string{
			"scope":             req.Scope,
			"reporting_cadence": cadence,
			"total_investment":  fmt.Sprintf("%.0f", commitment.TotalInvestment),
			"overall_readiness": fmt.Sprintf("%.1f", readiness.Overall),
		},
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		e.log.Error("strategic override audit append failed",
			zap.String("selection_id", sel.ID.Hex()),
			zap.Error(err))
		// No active team may exist without its audit record.
		sel.Status = models.StatusCancelled
		sel.EscalationNote = "override voided: audit record was not durable"
		if saveErr := e.repo.Save(ctx, sel); saveErr != nil {
			e.log.Error("unaudited strategic selection could not be voided",
				zap.String("selection_id", sel.ID.Hex()),
				zap.Error(saveErr))
		}
		return nil, fmt.Errorf("%w: %v", selection.ErrAuditWriteFailed, err)
	}

	e.log.Warn("strategic override executed",
		zap.String("selection_id", sel.ID.Hex()),
		zap.String("objective", req.Objective),
		zap.Float64("overall_readiness", readiness.Overall),
		zap.Int("workstreams", len(leads)))

	e.notify.Notify(ctx, sel.AssignedUserIDs(), selection.Payload{
		Kind:        "strategic_assignment",
		SelectionID: sel.ID,
		Message:     fmt.Sprintf("you are part of the %q transformation governance structure", req.Objective),
	})
	return sel, nil
}

// pickWorkstreamLeads chooses the most experienced candidate from each
// department in scope.
func pickWorkstreamLeads(pool []models.CandidateProfile) []models.CandidateProfile {
	best := make(map[string]models.CandidateProfile)
	for _, p := range pool {
		if p.Department == "" {
			continue
		}
		cur, ok := best[p.Department]
		if !ok || p.ExperienceYears > cur.ExperienceYears {
			best[p.Department] = p
		}
	}

	leads := make([]models.CandidateProfile, 0, len(best)*leadsPerDepartment)
	for _, p := range best {
		leads = append(leads, p)
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].Department < leads[j].Department
	})
	return leads
}

// AssessTransformationReadiness derives the five organizational sub-scores
// from the candidate pool in scope and the governance coverage:
//   - organizational readiness: share of staff available to engage
//   - leadership commitment: mean expertise of the chosen workstream leads'
//     departments, proxied by pool expertise
//   - resource availability: mean free capacity across the pool
//   - change capability: mean experience, saturated at 15 years
//   - stakeholder support: departments with a lead over departments in scope
func AssessTransformationReadiness(pool []models.CandidateProfile, leadCount int, now time.Time) models.TransformationReadiness {
	r := models.TransformationReadiness{AssessedAt: now}
	if len(pool) == 0 {
		return r
	}

	departments := make(map[string]bool)
	var available, expertise, freeCapacity, experience float64
	for _, p := range pool {
		if p.Department != "" {
			departments[p.Department] = true
		}
		if p.IsAvailable() {
			available++
		}
		expertise += models.ExpertiseScore(p.ExpertiseLevel)
		freeCapacity += selection.Clamp(100 - p.WorkloadPercent)
		years := float64(p.ExperienceYears)
		if years > 15 {
			years = 15
		}
		experience += 100 * years / 15
	}

	n := float64(len(pool))
	r.OrganizationalReadiness = selection.Clamp(100 * available / n)
	r.LeadershipCommitment = selection.Clamp(expertise / n)
	r.ResourceAvailability = selection.Clamp(freeCapacity / n)
	r.ChangeCapability = selection.Clamp(experience / n)
	if len(departments) > 0 {
		r.StakeholderSupport = selection.Clamp(100 * float64(leadCount) / float64(len(departments)))
	}

	r.Overall = selection.Clamp((r.OrganizationalReadiness +
		r.LeadershipCommitment +
		r.ResourceAvailability +
		r.ChangeCapability +
		r.StakeholderSupport) / 5)
	return r
}

func buildCommitment(periods []models.InvestmentPeriod, roi float64) models.ResourceCommitment {
	c := models.ResourceCommitment{
		Periods:      periods,
		ProjectedROI: roi,
	}
	for _, p := range periods {
		c.TotalInvestment += p.Amount
	}
	return c
}

// alignmentScore reads executive alignment off the readiness picture:
// leadership commitment dominates, stakeholder support seconds it.
func alignmentScore(r models.TransformationReadiness) float64 {
	return selection.Clamp(0.6*r.LeadershipCommitment + 0.4*r.StakeholderSupport)
}
