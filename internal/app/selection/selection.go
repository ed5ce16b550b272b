// internal/app/selection/selection.go

// Package selection defines the contracts shared by the five tier engines:
// the collaborator interfaces they consume (staff directory, authority
// resolver, selection repository, audit ledger, notification sink) and the
// error taxonomy every tier surfaces.
//
// The engines themselves are stateless; all durable state lives behind
// Repository, and every override/escalation writes the ledger before it
// reports success.
package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error taxonomy. PermissionDenied is always surfaced and never retried;
// the business-rule rejections leave the selection in draft; version
// conflicts are retried by the engines' save loops.
var (
	ErrPermissionDenied       = errors.New("actor's authority tier is insufficient for this operation")
	ErrCandidateUnavailable   = errors.New("one or more candidates are not available")
	ErrSizeExceeded           = errors.New("team size exceeds the configured maximum")
	ErrInsufficientCandidates = errors.New("candidate pool is smaller than the minimum team size")
	ErrConstraintInfeasible   = errors.New("no candidate subset can satisfy the required skills")
	ErrDuplicateVote          = errors.New("stakeholder has already voted in this round")
	ErrNotStakeholder         = errors.New("actor is not a registered stakeholder on this selection")
	ErrRoundClosed            = errors.New("the current voting round is already closed")
	ErrSelectionNotFound      = errors.New("selection not found")
	ErrVersionConflict        = errors.New("selection was modified concurrently")
	ErrInvalidTransition      = errors.New("status transition is not a legal lifecycle edge")
	ErrAuditWriteFailed       = errors.New("audit ledger write did not become durable")
	ErrWrongTier              = errors.New("operation does not apply to this selection's tier")
	ErrResponseAlreadyStarted = errors.New("emergency response has already been marked started")
)

// ScopeFilter narrows a directory query.
type ScopeFilter struct {
	Department    string
	Facility      string
	Skills        []string
	OnlyAvailable bool
}

// Directory is the read-only staff directory the engines draw candidates
// from. Implementations must return availability, workload, profession,
// skill tags, and experience for each profile.
type Directory interface {
	Query(ctx context.Context, filter ScopeFilter) ([]models.CandidateProfile, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CandidateProfile, error)
}

// Authority resolves an actor's identity to their authority tier. Which
// tier an actor holds is looked up here, never computed by the engines.
type Authority interface {
	TierOf(ctx context.Context, actorID primitive.ObjectID) (models.AuthorityLevel, error)
	AuthorizedEmergencyTypes(ctx context.Context, actorID primitive.ObjectID) ([]string, error)
}

// Repository is the single source of truth for MemberSelection aggregates.
// Save enforces optimistic concurrency on the aggregate's Version field and
// returns ErrVersionConflict when the stored version has moved on.
type Repository interface {
	Create(ctx context.Context, sel *models.MemberSelection) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.MemberSelection, error)
	Save(ctx context.Context, sel *models.MemberSelection) error
	ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]models.MemberSelection, error)
	ListByStatus(ctx context.Context, status string, limit int64) ([]models.MemberSelection, error)
}

// Ledger is the append-only audit log. Append must be durable before the
// triggering operation reports success.
type Ledger interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	BySelection(ctx context.Context, selectionID primitive.ObjectID) ([]models.AuditEntry, error)
}

// Payload is the notification body fanned out to stakeholders.
type Payload struct {
	Kind        string
	SelectionID primitive.ObjectID
	Message     string
}

// Notifier delivers notifications fire-and-forget: delivery failures are
// logged by implementations and never roll back the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, recipients []primitive.ObjectID, payload Payload)
}

// Scheduler runs one-shot timers for round deadlines and escalation
// windows. Jobs are keyed by tag so the engine that scheduled a timer can
// cancel it from any process state; scheduling a tag that already exists
// replaces the pending job. Timer handles are process-local, so a restart
// re-arms timers from the repository, not from the scheduler.
type Scheduler interface {
	Schedule(tag string, at time.Time, fn func(context.Context)) error
	Cancel(tag string) bool
}

// RoundDeadlineTag keys the timeout timer for one voting round.
func RoundDeadlineTag(selectionID primitive.ObjectID, roundNumber int) string {
	return fmt.Sprintf("round-deadline:%s:%d", selectionID.Hex(), roundNumber)
}

// EmergencyEscalationTag keys the auto-escalation timer for an emergency
// selection.
func EmergencyEscalationTag(selectionID primitive.ObjectID) string {
	return "emergency-escalation:" + selectionID.Hex()
}

// Clamp bounds v to [0,100]. Consensus percentages and every derived
// sub-score are normalized with it.
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
