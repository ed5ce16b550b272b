// internal/app/selection/basic/basic.go

// Package basic implements tier 1: direct assignment by a single approver.
// The selector names the candidates; the engine validates availability and
// size, creates the draft selection with its two required assignments, and
// computes the initial profession balance.
package basic

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/app/selection/balance"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultMaxTeamSize applies when the request's criteria leave the cap
// unset.
const DefaultMaxTeamSize = 10

type Engine struct {
	dir    selection.Directory
	auth   selection.Authority
	repo   selection.Repository
	notify selection.Notifier
	log    *zap.Logger
}

func New(dir selection.Directory, auth selection.Authority, repo selection.Repository, notify selection.Notifier, logger *zap.Logger) *Engine {
	return &Engine{dir: dir, auth: auth, repo: repo, notify: notify, log: logger}
}

// SelectRequest is the tier-1 operation input.
type SelectRequest struct {
	ProjectID    primitive.ObjectID
	SelectorID   primitive.ObjectID
	OwnerID      primitive.ObjectID
	SupervisorID primitive.ObjectID
	CandidateIDs []primitive.ObjectID
	Criteria     models.SelectionCriteria
	Reason       string
}

// Select performs a direct selection. It creates a draft MemberSelection
// with the two required assignments (project owner, supervisor) plus every
// chosen candidate as a team member.
//
// Fails with ErrPermissionDenied (selector level outside 2-4),
// ErrCandidateUnavailable (unknown or unavailable candidate), or
// ErrSizeExceeded (more candidates than the criteria allow).
func (e *Engine) Select(ctx context.Context, req SelectRequest) (*models.MemberSelection, error) {
	level, err := e.auth.TierOf(ctx, req.SelectorID)
	if err != nil {
		return nil, err
	}
	if !selectionpolicy.CanSelectBasic(level) {
		return nil, fmt.Errorf("%w: level %d cannot perform basic selection", selection.ErrPermissionDenied, level)
	}

	maxSize := req.Criteria.MaxTeamSize
	if maxSize <= 0 {
		maxSize = DefaultMaxTeamSize
	}
	if len(req.CandidateIDs) > maxSize {
		return nil, fmt.Errorf("%w: %d candidates, maximum %d", selection.ErrSizeExceeded, len(req.CandidateIDs), maxSize)
	}

	profiles, err := e.dir.GetByIDs(ctx, req.CandidateIDs)
	if err != nil {
		return nil, err
	}
	if len(profiles) != len(req.CandidateIDs) {
		return nil, fmt.Errorf("%w: %d of %d candidates not found in directory",
			selection.ErrCandidateUnavailable, len(req.CandidateIDs)-len(profiles), len(req.CandidateIDs))
	}
	for _, p := range profiles {
		if !p.IsAvailable() {
			return nil, fmt.Errorf("%w: %s is %s", selection.ErrCandidateUnavailable, p.FullName, p.Availability)
		}
	}

	now := time.Now().UTC()
	sel := &models.MemberSelection{
		ProjectID:  req.ProjectID,
		SelectorID: req.SelectorID,
		Tier:       models.TierBasic,
		Status:     models.StatusDraft,
		Assignments: []models.MemberAssignment{
			{UserID: req.OwnerID, Role: models.RoleProjectOwner, Required: true, AssignedAt: now},
			{UserID: req.SupervisorID, Role: models.RoleSupervisor, Required: true, AssignedAt: now},
		},
	}
	for _, p := range profiles {
		sel.Assignments = append(sel.Assignments, models.MemberAssignment{
			UserID:     p.UserID,
			Role:       models.RoleTeamMember,
			Reason:     req.Reason,
			AssignedAt: now,
		})
	}

	bal := balance.Compute(profiles, balance.DefaultBounds(maxSize))
	sel.Balance = &bal

	if err := e.repo.Create(ctx, sel); err != nil {
		return nil, err
	}

	e.log.Info("basic selection created",
		zap.String("selection_id", sel.ID.Hex()),
		zap.String("project_id", req.ProjectID.Hex()),
		zap.Int("members", len(sel.Assignments)))

	e.notify.Notify(ctx, sel.AssignedUserIDs(), selection.Payload{
		Kind:        "selection_created",
		SelectionID: sel.ID,
		Message:     "you have been assigned to a new project team",
	})

	return sel, nil
}
