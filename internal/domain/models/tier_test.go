package models

import "testing"

func TestVotingWeight(t *testing.T) {
	tests := []struct {
		level AuthorityLevel
		want  float64
	}{
		{LevelStaff, 1.0},
		{LevelLeader, 1.5},
		{LevelManager, 2.0},
		{LevelDirector, 2.5},
		{LevelExecutive, 3.0},
		{LevelUnresolved, 0},
		{AuthorityLevel(-1), 0},
		{AuthorityLevel(9), 3.0},
	}
	for _, tc := range tests {
		if got := tc.level.VotingWeight(); got != tc.want {
			t.Errorf("VotingWeight(%d) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestAuthorityLevelString(t *testing.T) {
	tests := []struct {
		level AuthorityLevel
		want  string
	}{
		{LevelStaff, "staff"},
		{LevelLeader, "leader"},
		{LevelManager, "manager"},
		{LevelDirector, "director"},
		{LevelExecutive, "executive"},
		{LevelUnresolved, "unresolved"},
	}
	for _, tc := range tests {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("AuthorityLevel(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}
