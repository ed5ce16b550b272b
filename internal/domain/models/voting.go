// internal/domain/models/voting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Support levels a stakeholder can express for one candidate.
const (
	SupportStrong       = "strongly_support"
	SupportFor          = "support"
	SupportNeutral      = "neutral"
	SupportAgainst      = "oppose"
	SupportStrongAgainst = "strongly_oppose"
)

// SupportValue returns the numeric value of a support level. These values
// are multiplied by the stakeholder's voting weight when tallying a round.
func SupportValue(level string) (float64, bool) {
	switch level {
	case SupportStrong:
		return 5, true
	case SupportFor:
		return 3, true
	case SupportNeutral:
		return 1, true
	case SupportAgainst:
		return -3, true
	case SupportStrongAgainst:
		return -5, true
	}
	return 0, false
}

// StakeholderParticipant registers one voter on a collaborative selection.
// Weight is derived from the stakeholder's authority level at registration
// time; HasVoted is reset at the start of every round.
type StakeholderParticipant struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Weight   float64            `bson:"weight" json:"weight"`
	HasVoted bool               `bson:"has_voted" json:"has_voted"`
}

// CandidateVote is one stakeholder's judgement of one candidate.
type CandidateVote struct {
	CandidateID primitive.ObjectID `bson:"candidate_id" json:"candidate_id"`
	Support     string             `bson:"support" json:"support"`
}

// StakeholderVote is the full ballot one stakeholder casts in one round.
// At most one per stakeholder per round; a second attempt is rejected,
// never overwritten.
type StakeholderVote struct {
	StakeholderID primitive.ObjectID `bson:"stakeholder_id" json:"stakeholder_id"`
	Candidates    []CandidateVote    `bson:"candidates" json:"candidates"`
	Comment       string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CastAt        time.Time          `bson:"cast_at" json:"cast_at"`
}

// VotingRound is one cycle of stakeholder voting. A round closes exactly
// when every registered stakeholder has voted or its deadline elapses,
// whichever comes first.
type VotingRound struct {
	Number       int               `bson:"number" json:"number"`
	StartedAt    time.Time         `bson:"started_at" json:"started_at"`
	Deadline     time.Time         `bson:"deadline" json:"deadline"`
	ClosedAt     *time.Time        `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	Votes        []StakeholderVote `bson:"votes" json:"votes"`
	ConsensusPct float64           `bson:"consensus_pct" json:"consensus_pct"`
	Reached      bool              `bson:"reached" json:"reached"`
	TimedOut     bool              `bson:"timed_out,omitempty" json:"timed_out,omitempty"`
}

// MaxVotingRounds is the cap on rounds before mandatory escalation.
const MaxVotingRounds = 3

// VoteBy returns the ballot cast by the given stakeholder in this round,
// or nil if they have not voted.
func (r *VotingRound) VoteBy(stakeholderID primitive.ObjectID) *StakeholderVote {
	for i := range r.Votes {
		if r.Votes[i].StakeholderID == stakeholderID {
			return &r.Votes[i]
		}
	}
	return nil
}

// IsClosed reports whether the round has been resolved.
func (r *VotingRound) IsClosed() bool {
	return r.ClosedAt != nil
}
