// internal/app/selection/emergency/emergency.go

// Package emergency implements tier 4: emergency override. A director or
// executive assembles a response team from a per-emergency-type template,
// bypassing the normal approval steps. Every execution writes exactly one
// audit entry, with a mandatory reporting deadline, before it reports
// success, and arms an auto-escalation timer in case the response never
// starts.
package emergency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Defaults applied when the corresponding Config field is zero.
const (
	DefaultTimeWindow      = 60 * time.Minute
	DefaultReportWindow    = 48 * time.Hour
	DefaultEscalationDelay = 30 * time.Minute
)

// Config tunes the override obligations.
type Config struct {
	// ReportWindow is how long the executive has to file the mandatory
	// after-action report.
	ReportWindow time.Duration
	// EscalationDelay is how long a response may sit unstarted before
	// auto-escalation fires.
	EscalationDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.ReportWindow <= 0 {
		c.ReportWindow = DefaultReportWindow
	}
	if c.EscalationDelay <= 0 {
		c.EscalationDelay = DefaultEscalationDelay
	}
	return c
}

type Engine struct {
	dir    selection.Directory
	auth   selection.Authority
	repo   selection.Repository
	ledger selection.Ledger
	notify selection.Notifier
	sched  selection.Scheduler
	log    *zap.Logger
	cfg    Config
}

func New(dir selection.Directory, auth selection.Authority, repo selection.Repository, ledger selection.Ledger, notify selection.Notifier, sched selection.Scheduler, logger *zap.Logger, cfg Config) *Engine {
	return &Engine{
		dir:    dir,
		auth:   auth,
		repo:   repo,
		ledger: ledger,
		notify: notify,
		sched:  sched,
		log:    logger,
		cfg:    cfg.withDefaults(),
	}
}

// ExecuteRequest describes the incident and who is overriding for it.
type ExecuteRequest struct {
	ProjectID         primitive.ObjectID
	ExecutiveID       primitive.ObjectID
	EmergencyType     string
	UrgencyLevel      string
	Description       string
	ImpactAssessment  string
	TimeWindowMinutes int
	Filter            selection.ScopeFilter
}

// The approval steps an emergency override bypasses.
var bypassedSteps = []string{models.StatusPendingApproval, models.StatusApproved}

// Execute performs an emergency selection: it assembles a command
// structure plus core and support responders from the emergency type's
// template, assesses team readiness, activates the selection immediately,
// and records the override in the audit ledger. The ledger write must be
// durable before Execute returns the selection; if it is not, Execute
// fails with ErrAuditWriteFailed even though the team was assembled.
func (e *Engine) Execute(ctx context.Context, req ExecuteRequest) (*models.MemberSelection, error) {
	level, err := e.auth.TierOf(ctx, req.ExecutiveID)
	if err != nil {
		return nil, err
	}
	authorized, err := e.auth.AuthorizedEmergencyTypes(ctx, req.ExecutiveID)
	if err != nil {
		return nil, err
	}
	if !selectionpolicy.CanExecuteEmergency(level, req.EmergencyType, authorized) {
		return nil, fmt.Errorf("%w: level %d is not authorized for %q emergencies",
			selection.ErrPermissionDenied, level, req.EmergencyType)
	}

	pool, err := e.dir.Query(ctx, req.Filter)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no responders in scope", selection.ErrInsufficientCandidates)
	}

	tpl := templateFor(req.EmergencyType)
	commander, core, support := assembleTeam(pool, tpl)
	if commander == nil {
		return nil, fmt.Errorf("%w: no commander candidate in scope", selection.ErrInsufficientCandidates)
	}

	now := time.Now().UTC()
	window := time.Duration(req.TimeWindowMinutes) * time.Minute
	if window <= 0 {
		window = DefaultTimeWindow
	}

	team := append(append([]models.CandidateProfile{*commander}, core...), support...)
	sel := &models.MemberSelection{
		ProjectID:  req.ProjectID,
		SelectorID: req.ExecutiveID,
		Tier:       models.TierEmergency,
		// an override walks the full approval chain in one action
		Status: models.StatusActive,
		Assignments: []models.MemberAssignment{
			{UserID: req.ExecutiveID, Role: models.RoleProjectOwner, Required: true, AssignedAt: now},
			{UserID: commander.UserID, Role: models.RoleSupervisor, Required: true, Reason: tpl.Name + " commander", AssignedAt: now},
		},
		Emergency: &models.EmergencyContext{
			EmergencyType:     req.EmergencyType,
			UrgencyLevel:      req.UrgencyLevel,
			Description:       req.Description,
			ImpactAssessment:  req.ImpactAssessment,
			TimeWindowMinutes: int(window / time.Minute),
			ResponseDeadline:  now.Add(window),
		},
	}
	for _, p := range core {
		role := models.RoleTeamMember
		if p.ExpertiseLevel == models.ExpertiseExpert {
			role = models.RoleSpecialist
		}
		sel.Assignments = append(sel.Assignments, models.MemberAssignment{
			UserID: p.UserID, Role: role, Reason: tpl.Name + " core", AssignedAt: now,
		})
	}
	for _, p := range support {
		sel.Assignments = append(sel.Assignments, models.MemberAssignment{
			UserID: p.UserID, Role: models.RoleAdvisor, Reason: tpl.Name + " support", AssignedAt: now,
		})
	}

	readiness := AssessReadiness(team, now)
	sel.Emergency.Readiness = &readiness

	if err := e.repo.Create(ctx, sel); err != nil {
		return nil, err
	}

	reportDue := now.Add(e.cfg.ReportWindow)
	entry := &models.AuditEntry{
		SelectionID:   sel.ID,
		Action:        models.AuditEmergencyOverride,
		ActorID:       req.ExecutiveID,
		Tier:          models.TierEmergency,
		BypassedSteps: bypassedSteps,
		Justification: req.Description,
		ReportDue:     &reportDue,
		Details: map[string]string{
			"emergency_type":    req.EmergencyType,
			"urgency_level":     req.UrgencyLevel,
			"template":          tpl.Name,
			"team_size":         fmt.Sprintf("%d", len(sel.Assignments)),
			"overall_readiness": fmt.Sprintf("%.1f", readiness.OverallReadiness),
		},
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		e.log.Error("emergency override audit append failed",
			zap.String("selection_id", sel.ID.Hex()),
			zap.Error(err))
		// No active team may exist without its audit record. The ledger
		// is down, so the void is logged rather than audited; a retry of
		// the override assembles a fresh team.
		sel.Status = models.StatusCancelled
		sel.EscalationNote = "override voided: audit record was not durable"
		if saveErr := e.repo.Save(ctx, sel); saveErr != nil {
			e.log.Error("unaudited emergency selection could not be voided",
				zap.String("selection_id", sel.ID.Hex()),
				zap.Error(saveErr))
		}
		return nil, fmt.Errorf("%w: %v", selection.ErrAuditWriteFailed, err)
	}

	e.armAutoEscalation(sel.ID, req.ExecutiveID, now.Add(e.cfg.EscalationDelay))

	e.log.Warn("emergency override executed",
		zap.String("selection_id", sel.ID.Hex()),
		zap.String("emergency_type", req.EmergencyType),
		zap.String("urgency_level", req.UrgencyLevel),
		zap.Float64("overall_readiness", readiness.OverallReadiness),
		zap.Time("response_deadline", sel.Emergency.ResponseDeadline))

	e.notify.Notify(ctx, sel.AssignedUserIDs(), selection.Payload{
		Kind:        "emergency_assignment",
		SelectionID: sel.ID,
		Message:     fmt.Sprintf("you are assigned to a %s team; response deadline %s", tpl.Name, sel.Emergency.ResponseDeadline.Format(time.RFC3339)),
	})
	return sel, nil
}

// MarkResponseStarted records that the response is underway and disarms
// the auto-escalation timer. Calling it twice is an error.
func (e *Engine) MarkResponseStarted(ctx context.Context, selectionID, actorID primitive.ObjectID) (*models.MemberSelection, error) {
	sel, err := selection.Mutate(ctx, e.repo, selectionID, func(s *models.MemberSelection) error {
		if s.Tier != models.TierEmergency || s.Emergency == nil {
			return fmt.Errorf("%w: selection %s is not an emergency selection", selection.ErrWrongTier, s.ID.Hex())
		}
		if s.Emergency.ResponseStartedAt != nil {
			return fmt.Errorf("%w: at %s", selection.ErrResponseAlreadyStarted, s.Emergency.ResponseStartedAt.Format(time.RFC3339))
		}
		now := time.Now().UTC()
		s.Emergency.ResponseStartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.sched.Cancel(selection.EmergencyEscalationTag(selectionID))

	e.log.Info("emergency response started",
		zap.String("selection_id", selectionID.Hex()),
		zap.String("actor_id", actorID.Hex()))
	return sel, nil
}

// EscalateUnstartedResponse is the auto-escalation callback: if the
// response has not started by the delay, it records the escalation and
// alerts the overriding executive.
func (e *Engine) EscalateUnstartedResponse(ctx context.Context, selectionID, executiveID primitive.ObjectID) error {
	sel, err := e.repo.Get(ctx, selectionID)
	if err != nil {
		if errors.Is(err, selection.ErrSelectionNotFound) {
			return nil
		}
		return err
	}
	if sel.Emergency == nil || sel.Emergency.ResponseStartedAt != nil || models.IsTerminalStatus(sel.Status) {
		return nil
	}

	entry := &models.AuditEntry{
		SelectionID:   sel.ID,
		Action:        models.AuditAutoEscalation,
		ActorID:       executiveID,
		Tier:          models.TierEmergency,
		Justification: fmt.Sprintf("response not started within %s of the override", e.cfg.EscalationDelay),
		Details: map[string]string{
			"emergency_type": sel.Emergency.EmergencyType,
			"urgency_level":  sel.Emergency.UrgencyLevel,
		},
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", selection.ErrAuditWriteFailed, err)
	}

	e.log.Warn("emergency response auto-escalated",
		zap.String("selection_id", sel.ID.Hex()),
		zap.String("emergency_type", sel.Emergency.EmergencyType))

	e.notify.Notify(ctx, []primitive.ObjectID{executiveID}, selection.Payload{
		Kind:        "response_escalated",
		SelectionID: sel.ID,
		Message:     "emergency response has not started; escalating",
	})
	return nil
}

// RearmEscalations re-arms auto-escalation timers for active emergency
// selections whose response has not started. Runs once at startup; windows
// that already elapsed fire immediately.
func (e *Engine) RearmEscalations(ctx context.Context, limit int64) error {
	active, err := e.repo.ListByStatus(ctx, models.StatusActive, limit)
	if err != nil {
		return err
	}
	armed := 0
	for i := range active {
		s := &active[i]
		if s.Tier != models.TierEmergency || s.Emergency == nil || s.Emergency.ResponseStartedAt != nil {
			continue
		}
		e.armAutoEscalation(s.ID, s.SelectorID, s.CreatedAt.Add(e.cfg.EscalationDelay))
		armed++
	}
	if armed > 0 {
		e.log.Info("emergency escalation timers re-armed", zap.Int("count", armed))
	}
	return nil
}

func (e *Engine) armAutoEscalation(selectionID, executiveID primitive.ObjectID, at time.Time) {
	err := e.sched.Schedule(selection.EmergencyEscalationTag(selectionID), at, func(ctx context.Context) {
		if err := e.EscalateUnstartedResponse(ctx, selectionID, executiveID); err != nil {
			e.log.Error("auto-escalation failed",
				zap.String("selection_id", selectionID.Hex()),
				zap.Error(err))
		}
	})
	if err != nil {
		e.log.Error("auto-escalation scheduling failed",
			zap.String("selection_id", selectionID.Hex()),
			zap.Error(err))
	}
}
