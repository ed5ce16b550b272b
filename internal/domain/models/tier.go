// internal/domain/models/tier.go
package models

// Terminology: Tiers
//   - SelectionTier: which decision-making authority produced a selection
//     (stored on the MemberSelection document).
//   - AuthorityLevel: the numeric 1..5 authority an actor holds, resolved
//     from the directory. Level N may execute tier-N operations and below,
//     subject to per-tier policy.

// SelectionTier identifies the authority tier a selection was made under.
type SelectionTier string

const (
	TierBasic         SelectionTier = "basic"
	TierCollaborative SelectionTier = "collaborative"
	TierOptimized     SelectionTier = "optimized"
	TierEmergency     SelectionTier = "emergency"
	TierStrategic     SelectionTier = "strategic"
)

// IsValidSelectionTier checks if a value is a known selection tier.
func IsValidSelectionTier(v SelectionTier) bool {
	switch v {
	case TierBasic, TierCollaborative, TierOptimized, TierEmergency, TierStrategic:
		return true
	}
	return false
}

// AuthorityLevel is an actor's escalating authority, 1 (lowest) to 5 (highest).
type AuthorityLevel int

const (
	LevelStaff      AuthorityLevel = 1
	LevelLeader     AuthorityLevel = 2
	LevelManager    AuthorityLevel = 3
	LevelDirector   AuthorityLevel = 4
	LevelExecutive  AuthorityLevel = 5
	LevelUnresolved AuthorityLevel = 0
)

// EmergencyAuthorityThreshold is the minimum level allowed to execute an
// emergency override.
const EmergencyAuthorityThreshold = LevelDirector

// VotingWeight maps an authority level to its stakeholder voting weight.
// Weights grow linearly from 1.0 at level 1 to 3.0 at level 5.
func (l AuthorityLevel) VotingWeight() float64 {
	if l < LevelStaff {
		return 0
	}
	if l > LevelExecutive {
		l = LevelExecutive
	}
	return 1.0 + 0.5*float64(l-LevelStaff)
}

func (l AuthorityLevel) String() string {
	switch l {
	case LevelStaff:
		return "staff"
	case LevelLeader:
		return "leader"
	case LevelManager:
		return "manager"
	case LevelDirector:
		return "director"
	case LevelExecutive:
		return "executive"
	}
	return "unresolved"
}
