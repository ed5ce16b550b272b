// internal/app/selection/collaborative/collaborative.go

// Package collaborative implements tier 2: multi-stakeholder selection by
// weighted voting. The initiator freezes a candidate pool, registered
// stakeholders vote in rounds, and the round resolves when everyone has
// voted or the deadline elapses. Consensus at or above the threshold
// finalizes the team; three rounds without consensus escalate the
// selection for higher-authority approval.
package collaborative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/app/selection/balance"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Defaults applied when the corresponding Config field is zero.
const (
	DefaultConsensusThreshold = 70.0
	DefaultRoundDeadline      = 72 * time.Hour

	// pool size is capped at this multiple of the target team size
	poolFactor = 3
)

// Config tunes the voting process. Zero values fall back to the defaults
// above.
type Config struct {
	ConsensusThreshold float64
	RoundDeadline      time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConsensusThreshold <= 0 {
		c.ConsensusThreshold = DefaultConsensusThreshold
	}
	if c.RoundDeadline <= 0 {
		c.RoundDeadline = DefaultRoundDeadline
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

// InitiateRequest opens a collaborative selection.
type InitiateRequest struct {
	ProjectID      primitive.ObjectID
	InitiatorID    primitive.ObjectID
	OwnerID        primitive.ObjectID
	SupervisorID   primitive.ObjectID
	StakeholderIDs []primitive.ObjectID
	Filter         selection.ScopeFilter
	Criteria       models.SelectionCriteria
	TargetTeamSize int
}

// Initiate builds the candidate pool, registers the stakeholders with
// their authority-derived voting weights, and opens round 1. The pool is
// frozen at this point; later votes may only reference its candidates.
func (e *Engine) Initiate(ctx context.Context, req InitiateRequest) (*models.MemberSelection, error) {
	level, err := e.auth.TierOf(ctx, req.InitiatorID)
	if err != nil {
		return nil, err
	}
	if !selectionpolicy.CanInitiateCollaboration(level) {
		return nil, fmt.Errorf("%w: level %d cannot initiate collaborative selection", selection.ErrPermissionDenied, level)
	}
	if len(req.StakeholderIDs) < 2 {
		return nil, fmt.Errorf("collaborative selection needs at least two stakeholders, got %d", len(req.StakeholderIDs))
	}

	stakeholders := make([]models.StakeholderParticipant, 0, len(req.StakeholderIDs))
	for _, id := range req.StakeholderIDs {
		stLevel, err := e.auth.TierOf(ctx, id)
		if err != nil {
			return nil, err
		}
		stakeholders = append(stakeholders, models.StakeholderParticipant{
			UserID: id,
			Weight: stLevel.VotingWeight(),
		})
	}

	target := req.TargetTeamSize
	if target <= 0 {
		target = req.Criteria.MaxTeamSize
	}
	if target <= 0 {
		target = req.Criteria.MinTeamSize
	}
	if target <= 0 {
		return nil, fmt.Errorf("collaborative selection needs a target team size")
	}

	filter := req.Filter
	filter.OnlyAvailable = true
	profiles, err := e.dir.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	pool := selection.BuildCandidates(profiles, req.Criteria)
	bounds := balance.DefaultBounds(target)
	pool, bonus := balance.FilterPool(pool, map[string]int{}, bounds)
	selection.RankCandidates(pool, bonus)

	if len(pool) < req.Criteria.MinTeamSize || len(pool) < target {
		return nil, fmt.Errorf("%w: pool of %d for target size %d",
			selection.ErrInsufficientCandidates, len(pool), target)
	}
	if limit := poolFactor * target; len(pool) > limit {
		pool = pool[:limit]
	}

	candidateIDs := make([]primitive.ObjectID, 0, len(pool))
	for _, c := range pool {
		candidateIDs = append(candidateIDs, c.Profile.UserID)
	}

	now := time.Now().UTC()
	sel := &models.MemberSelection{
		ProjectID:  req.ProjectID,
		SelectorID: req.InitiatorID,
		Tier:       models.TierCollaborative,
		Status:     models.StatusDraft,
		Assignments: []models.MemberAssignment{
			{UserID: req.OwnerID, Role: models.RoleProjectOwner, Required: true, AssignedAt: now},
			{UserID: req.SupervisorID, Role: models.RoleSupervisor, Required: true, AssignedAt: now},
		},
		Stakeholders:       stakeholders,
		CandidateIDs:       candidateIDs,
		ConsensusThreshold: e.cfg.ConsensusThreshold,
		TargetTeamSize:     target,
		Rounds: []models.VotingRound{{
			Number:    1,
			StartedAt: now,
			Deadline:  now.Add(e.cfg.RoundDeadline),
		}},
	}

	if err := e.repo.Create(ctx, sel); err != nil {
		return nil, err
	}

	e.armDeadline(sel.ID, 1, sel.Rounds[0].Deadline)

	e.log.Info("collaborative selection opened",
		zap.String("selection_id", sel.ID.Hex()),
		zap.Int("stakeholders", len(stakeholders)),
		zap.Int("pool", len(candidateIDs)))

	e.notify.Notify(ctx, req.StakeholderIDs, selection.Payload{
		Kind:        "voting_opened",
		SelectionID: sel.ID,
		Message:     "a collaborative team selection is open for your vote",
	})
	return sel, nil
}

// roundOutcome records what a resolution did, so side effects (audit,
// timers, notifications) run once after the save commits, not inside the
// retried mutate closure.
type roundOutcome struct {
	resolved     bool
	timedOut     bool
	reached      bool
	escalated    bool
	nextRound    int
	consensusPct float64
}

// SubmitVote records one stakeholder's ballot in the current round. The
// round resolves inside the same optimistic save when this is the last
// outstanding ballot, so exactly one concurrent submitter closes it.
func (e *Engine) SubmitVote(ctx context.Context, selectionID, stakeholderID primitive.ObjectID, ballot []models.CandidateVote, comment string) (*models.MemberSelection, error) {
	var out roundOutcome

	sel, err := selection.Mutate(ctx, e.repo, selectionID, func(s *models.MemberSelection) error {
		out = roundOutcome{}

		if s.Tier != models.TierCollaborative {
			return fmt.Errorf("%w: selection %s is not collaborative", selection.ErrWrongTier, s.ID.Hex())
		}
		if s.Status != models.StatusDraft {
			return fmt.Errorf("%w: selection is %s", selection.ErrRoundClosed, s.Status)
		}
		round := s.CurrentRound()
		if round == nil || round.IsClosed() {
			return selection.ErrRoundClosed
		}

		st := s.Stakeholder(stakeholderID)
		if st == nil {
			return selection.ErrNotStakeholder
		}
		if st.HasVoted || round.VoteBy(stakeholderID) != nil {
			return selection.ErrDuplicateVote
		}

		inPool := make(map[primitive.ObjectID]bool, len(s.CandidateIDs))
		for _, id := range s.CandidateIDs {
			inPool[id] = true
		}
		for _, cv := range ballot {
			if !inPool[cv.CandidateID] {
				return fmt.Errorf("candidate %s is not in the selection pool", cv.CandidateID.Hex())
			}
			if _, ok := models.SupportValue(cv.Support); !ok {
				return fmt.Errorf("unknown support level %q", cv.Support)
			}
		}

		round.Votes = append(round.Votes, models.StakeholderVote{
			StakeholderID: stakeholderID,
			Candidates:    ballot,
			Comment:       comment,
			CastAt:        time.Now().UTC(),
		})
		st.HasVoted = true

		if allVoted(s) {
			return e.resolveRound(ctx, s, false, &out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.afterResolve(ctx, sel, stakeholderID, out); err != nil {
		return sel, err
	}
	return sel, nil
}

var errRoundAlreadyResolved = errors.New("round already resolved")

// CloseExpiredRound is the deadline-timer callback: it resolves the named
// round from whatever ballots were cast, marking it timed out. A round
// that already resolved (every stakeholder voted just before the timer
// fired) is left alone.
func (e *Engine) CloseExpiredRound(ctx context.Context, selectionID primitive.ObjectID, roundNumber int) error {
	var out roundOutcome

	sel, err := selection.Mutate(ctx, e.repo, selectionID, func(s *models.MemberSelection) error {
		out = roundOutcome{}

		round := s.CurrentRound()
		if s.Status != models.StatusDraft || round == nil || round.Number != roundNumber || round.IsClosed() {
			return errRoundAlreadyResolved
		}
		return e.resolveRound(ctx, s, true, &out)
	})
	if errors.Is(err, errRoundAlreadyResolved) {
		return nil
	}
	if err != nil {
		return err
	}
	return e.afterResolve(ctx, sel, sel.SelectorID, out)
}

func allVoted(s *models.MemberSelection) bool {
	for _, st := range s.Stakeholders {
		if !st.HasVoted {
			return false
		}
	}
	return true
}

// resolveRound closes the current round and applies its consequence:
// finalize the team, open the next round, or escalate after the last one.
// It runs inside the optimistic save loop, so it must only touch s and
// read-only collaborators.
func (e *Engine) resolveRound(ctx context.Context, s *models.MemberSelection, timedOut bool, out *roundOutcome) error {
	round := s.CurrentRound()
	scores := Tally(s, round)
	pct := ConsensusPercent(scores)

	now := time.Now().UTC()
	round.ClosedAt = &now
	round.ConsensusPct = pct
	round.TimedOut = timedOut

	out.resolved = true
	out.timedOut = timedOut
	out.consensusPct = pct

	switch {
	case pct >= s.ConsensusThreshold:
		round.Reached = true
		out.reached = true
		if err := e.finalizeTeam(ctx, s, scores, now); err != nil {
			return err
		}
		s.Status = models.StatusPendingApproval

	case len(s.Rounds) < models.MaxVotingRounds:
		for i := range s.Stakeholders {
			s.Stakeholders[i].HasVoted = false
		}
		next := models.VotingRound{
			Number:    len(s.Rounds) + 1,
			StartedAt: now,
			Deadline:  now.Add(e.cfg.RoundDeadline),
		}
		s.Rounds = append(s.Rounds, next)
		out.nextRound = next.Number

	default:
		s.EscalationNote = fmt.Sprintf(
			"consensus not reached after %d rounds (final %.1f%%, threshold %.1f%%); escalated for higher-authority decision",
			len(s.Rounds), pct, s.ConsensusThreshold)
		s.Status = models.StatusPendingApproval
		out.escalated = true
	}
	return nil
}

// finalizeTeam turns the top-scored candidates into team-member
// assignments and refreshes the balance snapshot over the new member set.
func (e *Engine) finalizeTeam(ctx context.Context, s *models.MemberSelection, scores map[primitive.ObjectID]float64, now time.Time) error {
	top := TopCandidates(scores, s.TargetTeamSize)
	for _, id := range top {
		s.Assignments = append(s.Assignments, models.MemberAssignment{
			UserID:     id,
			Role:       models.RoleTeamMember,
			Reason:     "selected by stakeholder consensus",
			AssignedAt: now,
		})
	}

	profiles, err := e.dir.GetByIDs(ctx, s.AssignedUserIDs())
	if err != nil {
		return err
	}
	bal := balance.Compute(profiles, balance.DefaultBounds(s.TargetTeamSize))
	s.Balance = &bal
	return nil
}

// afterResolve runs the once-only side effects of a committed resolution:
// timer bookkeeping, ledger entries, and notifications.
func (e *Engine) afterResolve(ctx context.Context, sel *models.MemberSelection, actorID primitive.ObjectID, out roundOutcome) error {
	if !out.resolved {
		return nil
	}

	closed := len(sel.Rounds)
	if out.nextRound > 0 {
		closed = out.nextRound - 1
	}
	e.sched.Cancel(selection.RoundDeadlineTag(sel.ID, closed))

	e.log.Info("voting round resolved",
		zap.String("selection_id", sel.ID.Hex()),
		zap.Int("round", closed),
		zap.Float64("consensus_pct", out.consensusPct),
		zap.Bool("reached", out.reached),
		zap.Bool("timed_out", out.timedOut),
		zap.Bool("escalated", out.escalated))

	if out.timedOut {
		if err := e.appendAudit(ctx, sel, actorID, models.AuditQuorumTimeout,
			fmt.Sprintf("round %d deadline elapsed before all stakeholders voted", closed), out); err != nil {
			return err
		}
	}
	if out.escalated {
		if err := e.appendAudit(ctx, sel, actorID, models.AuditConsensusEscalation, sel.EscalationNote, out); err != nil {
			return err
		}
	}

	switch {
	case out.reached:
		e.notify.Notify(ctx, sel.AssignedUserIDs(), selection.Payload{
			Kind:        "consensus_reached",
			SelectionID: sel.ID,
			Message:     "stakeholder consensus reached; the team is pending approval",
		})
	case out.escalated:
		e.notify.Notify(ctx, stakeholderIDs(sel), selection.Payload{
			Kind:        "consensus_escalated",
			SelectionID: sel.ID,
			Message:     "voting ended without consensus; the selection was escalated",
		})
	case out.nextRound > 0:
		next := sel.CurrentRound()
		e.armDeadline(sel.ID, next.Number, next.Deadline)
		e.notify.Notify(ctx, stakeholderIDs(sel), selection.Payload{
			Kind:        "new_voting_round",
			SelectionID: sel.ID,
			Message:     fmt.Sprintf("voting round %d is open", next.Number),
		})
	}
	return nil
}

func (e *Engine) appendAudit(ctx context.Context, sel *models.MemberSelection, actorID primitive.ObjectID, action, justification string, out roundOutcome) error {
	entry := &models.AuditEntry{
		SelectionID:   sel.ID,
		Action:        action,
		ActorID:       actorID,
		Tier:          sel.Tier,
		Justification: justification,
		Details: map[string]string{
			"rounds":        fmt.Sprintf("%d", len(sel.Rounds)),
			"consensus_pct": fmt.Sprintf("%.1f", out.consensusPct),
		},
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		e.log.Error("escalation audit append failed",
			zap.String("selection_id", sel.ID.Hex()),
			zap.Error(err))
		return fmt.Errorf("%w: %v", selection.ErrAuditWriteFailed, err)
	}
	return nil
}

// RearmDeadlines re-arms the round-deadline timers for every open
// collaborative selection. Timers are process-local, so this runs once at
// startup; rounds whose deadline already passed fire immediately.
func (e *Engine) RearmDeadlines(ctx context.Context, limit int64) error {
	open, err := e.repo.ListByStatus(ctx, models.StatusDraft, limit)
	if err != nil {
		return err
	}
	armed := 0
	for i := range open {
		s := &open[i]
		if s.Tier != models.TierCollaborative {
			continue
		}
		round := s.CurrentRound()
		if round == nil || round.IsClosed() {
			continue
		}
		e.armDeadline(s.ID, round.Number, round.Deadline)
		armed++
	}
	if armed > 0 {
		e.log.Info("round deadlines re-armed", zap.Int("count", armed))
	}
	return nil
}

// armDeadline schedules the round's timeout callback. Failures are logged
// and not fatal: a missed timer is re-armed by startup recovery.
func (e *Engine) armDeadline(selectionID primitive.ObjectID, roundNumber int, at time.Time) {
	err := e.sched.Schedule(selection.RoundDeadlineTag(selectionID, roundNumber), at, func(ctx context.Context) {
		if err := e.CloseExpiredRound(ctx, selectionID, roundNumber); err != nil {
			e.log.Error("expired round close failed",
				zap.String("selection_id", selectionID.Hex()),
				zap.Int("round", roundNumber),
				zap.Error(err))
		}
	})
	if err != nil {
		e.log.Error("round deadline scheduling failed",
			zap.String("selection_id", selectionID.Hex()),
			zap.Int("round", roundNumber),
			zap.Error(err))
	}
}

func stakeholderIDs(sel *models.MemberSelection) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(sel.Stakeholders))
	for _, st := range sel.Stakeholders {
		ids = append(ids, st.UserID)
	}
	return ids
}
