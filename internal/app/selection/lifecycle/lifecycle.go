// internal/app/selection/lifecycle/lifecycle.go

// Package lifecycle drives the shared status machine: approvals,
// activation, completion, and cancellation. Every transition is recorded
// in the audit ledger so the history of a selection can be replayed.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Engine struct {
	auth   selection.Authority
	repo   selection.Repository
	ledger selection.Ledger
	notify selection.Notifier
	sched  selection.Scheduler
	log    *zap.Logger
}

func New(auth selection.Authority, repo selection.Repository, ledger selection.Ledger, notify selection.Notifier, sched selection.Scheduler, logger *zap.Logger) *Engine {
	return &Engine{auth: auth, repo: repo, ledger: ledger, notify: notify, sched: sched, log: logger}
}

// Advance moves the selection to the given status along a legal lifecycle
// edge. Fails with ErrPermissionDenied (actor below level 2) or
// ErrInvalidTransition (edge not in the state machine).
func (e *Engine) Advance(ctx context.Context, selectionID, actorID primitive.ObjectID, to, reason string) (*models.MemberSelection, error) {
	level, err := e.auth.TierOf(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !selectionpolicy.CanAdvanceStatus(level) {
		return nil, fmt.Errorf("%w: level %d cannot drive lifecycle transitions", selection.ErrPermissionDenied, level)
	}

	var from string
	sel, err := selection.Mutate(ctx, e.repo, selectionID, func(s *models.MemberSelection) error {
		if !models.CanTransition(s.Status, to) {
			return fmt.Errorf("%w: %s -> %s", selection.ErrInvalidTransition, s.Status, to)
		}
		from = s.Status
		s.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == models.StatusCancelled {
		e.disarmTimers(sel)
	}

	entry := &models.AuditEntry{
		SelectionID:   sel.ID,
		Action:        models.AuditStatusTransition,
		ActorID:       actorID,
		Tier:          sel.Tier,
		Justification: reason,
		Details: map[string]string{
			"from": from,
			"to":   to,
		},
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		e.log.Error("transition audit append failed",
			zap.String("selection_id", sel.ID.Hex()),
			zap.Error(err))
		return sel, fmt.Errorf("%w: %v", selection.ErrAuditWriteFailed, err)
	}

	e.log.Info("selection transitioned",
		zap.String("selection_id", sel.ID.Hex()),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("actor_id", actorID.Hex()))

	e.notify.Notify(ctx, sel.AssignedUserIDs(), selection.Payload{
		Kind:        "status_changed",
		SelectionID: sel.ID,
		Message:     fmt.Sprintf("selection moved from %s to %s", from, to),
	})
	return sel, nil
}

// Cancel moves the selection to cancelled from any non-terminal state and
// disarms its pending timers.
func (e *Engine) Cancel(ctx context.Context, selectionID, actorID primitive.ObjectID, reason string) (*models.MemberSelection, error) {
	return e.Advance(ctx, selectionID, actorID, models.StatusCancelled, reason)
}

// disarmTimers drops any timers still pending for a selection leaving the
// active path: open voting-round deadlines and the emergency
// auto-escalation window.
func (e *Engine) disarmTimers(sel *models.MemberSelection) {
	if round := sel.CurrentRound(); round != nil && !round.IsClosed() {
		e.sched.Cancel(selection.RoundDeadlineTag(sel.ID, round.Number))
	}
	if sel.Emergency != nil && sel.Emergency.ResponseStartedAt == nil {
		e.sched.Cancel(selection.EmergencyEscalationTag(sel.ID))
	}
}
