package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusPendingApproval, true},
		{StatusPendingApproval, StatusApproved, true},
		{StatusApproved, StatusActive, true},
		{StatusActive, StatusCompleted, true},

		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusActive, false},
		{StatusPendingApproval, StatusActive, false},
		{StatusApproved, StatusCompleted, false},
		{StatusActive, StatusDraft, false},
		{StatusApproved, StatusDraft, false},

		{StatusDraft, StatusCancelled, true},
		{StatusPendingApproval, StatusCancelled, true},
		{StatusApproved, StatusCancelled, true},
		{StatusActive, StatusCancelled, true},

		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusActive, false},
		{StatusCancelled, StatusDraft, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, status := range []string{StatusDraft, StatusPendingApproval, StatusApproved, StatusActive} {
		if IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = true, want false", status)
		}
	}
	for _, status := range []string{StatusCompleted, StatusCancelled} {
		if !IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = false, want true", status)
		}
	}
}

func TestIsValidSelectionTier(t *testing.T) {
	for _, tier := range []SelectionTier{TierBasic, TierCollaborative, TierOptimized, TierEmergency, TierStrategic} {
		if !IsValidSelectionTier(tier) {
			t.Errorf("IsValidSelectionTier(%q) = false, want true", tier)
		}
	}
	if IsValidSelectionTier("committee") {
		t.Error("IsValidSelectionTier(\"committee\") = true, want false")
	}
}
