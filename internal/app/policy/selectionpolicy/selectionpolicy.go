// Package selectionpolicy holds the authorization rules for each selection
// tier.
//
// Authorization rules:
//   - Basic selection: levels 2-4 (leaders, managers, directors)
//   - Collaborative initiation: level 2 and above
//   - Voting: any registered stakeholder, regardless of level
//   - Optimization runs: level 3 and above
//   - Emergency override: level 4 and above, and only for emergency types
//     in the actor's authorized set
//   - Strategic override: level 5 only
//
// The policies are pure predicates over resolved authority levels; which
// level an actor holds comes from the authority resolver, never from here.
package selectionpolicy

import (
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// CanSelectBasic reports whether the actor may perform a direct (tier 1)
// selection. Executives use the strategic path instead of direct picks.
func CanSelectBasic(level models.AuthorityLevel) bool {
	return level >= models.LevelLeader && level <= models.LevelDirector
}

// CanInitiateCollaboration reports whether the actor may open a
// multi-stakeholder selection.
func CanInitiateCollaboration(level models.AuthorityLevel) bool {
	return level >= models.LevelLeader
}

// CanRunOptimization reports whether the actor may run the optimization
// engine over a candidate pool.
func CanRunOptimization(level models.AuthorityLevel) bool {
	return level >= models.LevelManager
}

// CanExecuteEmergency reports whether the actor may execute an emergency
// override for the given emergency type.
func CanExecuteEmergency(level models.AuthorityLevel, emergencyType string, authorized []string) bool {
	if level < models.EmergencyAuthorityThreshold {
		return false
	}
	for _, t := range authorized {
		if t == emergencyType {
			return true
		}
	}
	return false
}

// CanExecuteStrategic reports whether the actor may execute a strategic
// override. Top-tier authority only.
func CanExecuteStrategic(level models.AuthorityLevel) bool {
	return level == models.LevelExecutive
}

// CanAdvanceStatus reports whether the actor may drive lifecycle
// transitions (approve, activate, complete, cancel) on a selection.
func CanAdvanceStatus(level models.AuthorityLevel) bool {
	return level >= models.LevelLeader
}
