// internal/domain/models/selection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Selection lifecycle states. The only legal transitions are the edges in
// statusEdges; Cancelled is reachable from any non-terminal state.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusActive          = "active"
	StatusCompleted       = "completed"
	StatusCancelled       = "cancelled"
)

var statusEdges = map[string]string{
	StatusDraft:           StatusPendingApproval,
	StatusPendingApproval: StatusApproved,
	StatusApproved:        StatusActive,
	StatusActive:          StatusCompleted,
}

// CanTransition reports whether a selection may move from one status to
// another along the lifecycle. Cancellation is allowed from any state that
// is not already terminal.
func CanTransition(from, to string) bool {
	if from == StatusCompleted || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return statusEdges[from] == to
}

// IsTerminalStatus reports whether no further transitions are possible.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// MemberSelection is the aggregate root for one team-selection process.
// It is owned by the selections store and mutated only through tier
// operations; Version is the optimistic-concurrency token (incremented on
// every save, matched on update).
type MemberSelection struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ProjectID  primitive.ObjectID `bson:"project_id" json:"project_id"`
	SelectorID primitive.ObjectID `bson:"selector_id" json:"selector_id"`
	Tier       SelectionTier      `bson:"tier" json:"tier"`
	Status     string             `bson:"status" json:"status"`

	Assignments []MemberAssignment `bson:"assignments" json:"assignments"`

	// Collaborative-tier state. CandidateIDs is the frozen pool the
	// stakeholders vote over; candidate profiles themselves are a
	// read-projection and are never stored here.
	Stakeholders       []StakeholderParticipant `bson:"stakeholders,omitempty" json:"stakeholders,omitempty"`
	CandidateIDs       []primitive.ObjectID     `bson:"candidate_ids,omitempty" json:"candidate_ids,omitempty"`
	Rounds             []VotingRound            `bson:"rounds,omitempty" json:"rounds,omitempty"`
	ConsensusThreshold float64                  `bson:"consensus_threshold,omitempty" json:"consensus_threshold,omitempty"`
	TargetTeamSize     int                      `bson:"target_team_size,omitempty" json:"target_team_size,omitempty"`
	EscalationNote     string                   `bson:"escalation_note,omitempty" json:"escalation_note,omitempty"`

	// Snapshot of the profession balance over the current assignment set.
	// Recomputed on every composition change, never served stale.
	Balance *ProfessionBalance `bson:"balance,omitempty" json:"balance,omitempty"`

	// Override-tier state.
	Emergency *EmergencyContext `bson:"emergency,omitempty" json:"emergency,omitempty"`
	Strategic *StrategicPlan    `bson:"strategic,omitempty" json:"strategic,omitempty"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CurrentRound returns the newest voting round, or nil if none started.
func (s *MemberSelection) CurrentRound() *VotingRound {
	if len(s.Rounds) == 0 {
		return nil
	}
	return &s.Rounds[len(s.Rounds)-1]
}

// Stakeholder returns the registered participant for userID, or nil.
func (s *MemberSelection) Stakeholder(userID primitive.ObjectID) *StakeholderParticipant {
	for i := range s.Stakeholders {
		if s.Stakeholders[i].UserID == userID {
			return &s.Stakeholders[i]
		}
	}
	return nil
}

// AssignedUserIDs returns the user IDs of all current assignments.
func (s *MemberSelection) AssignedUserIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}
