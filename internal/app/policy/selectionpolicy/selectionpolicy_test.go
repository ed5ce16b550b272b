package selectionpolicy_test

import (
	"testing"

	"github.com/dalemusser/selecthub/internal/app/policy/selectionpolicy"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

func TestCanSelectBasic(t *testing.T) {
	tests := []struct {
		level models.AuthorityLevel
		want  bool
	}{
		{models.LevelUnresolved, false},
		{models.LevelStaff, false},
		{models.LevelLeader, true},
		{models.LevelManager, true},
		{models.LevelDirector, true},
		{models.LevelExecutive, false},
	}
	for _, tc := range tests {
		if got := selectionpolicy.CanSelectBasic(tc.level); got != tc.want {
			t.Errorf("CanSelectBasic(%s) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestCanInitiateCollaboration(t *testing.T) {
	if selectionpolicy.CanInitiateCollaboration(models.LevelStaff) {
		t.Error("staff should not initiate collaborative selections")
	}
	for _, level := range []models.AuthorityLevel{models.LevelLeader, models.LevelManager, models.LevelDirector, models.LevelExecutive} {
		if !selectionpolicy.CanInitiateCollaboration(level) {
			t.Errorf("level %s should initiate collaborative selections", level)
		}
	}
}

func TestCanRunOptimization(t *testing.T) {
	for _, level := range []models.AuthorityLevel{models.LevelStaff, models.LevelLeader} {
		if selectionpolicy.CanRunOptimization(level) {
			t.Errorf("level %s should not run optimization", level)
		}
	}
	for _, level := range []models.AuthorityLevel{models.LevelManager, models.LevelDirector, models.LevelExecutive} {
		if !selectionpolicy.CanRunOptimization(level) {
			t.Errorf("level %s should run optimization", level)
		}
	}
}

func TestCanExecuteEmergency(t *testing.T) {
	authorized := []string{models.EmergencyOutbreak, models.EmergencyStaffShortage}

	if selectionpolicy.CanExecuteEmergency(models.LevelManager, models.EmergencyOutbreak, authorized) {
		t.Error("manager is below the emergency authority threshold")
	}
	if !selectionpolicy.CanExecuteEmergency(models.LevelDirector, models.EmergencyOutbreak, authorized) {
		t.Error("director with an authorized type should execute")
	}
	if !selectionpolicy.CanExecuteEmergency(models.LevelExecutive, models.EmergencyStaffShortage, authorized) {
		t.Error("executive with an authorized type should execute")
	}
	if selectionpolicy.CanExecuteEmergency(models.LevelExecutive, models.EmergencySystemFailure, authorized) {
		t.Error("type outside the authorized set must be refused, even for executives")
	}
	if selectionpolicy.CanExecuteEmergency(models.LevelDirector, models.EmergencyOutbreak, nil) {
		t.Error("empty authorized set must refuse everything")
	}
}

func TestCanExecuteStrategic(t *testing.T) {
	for _, level := range []models.AuthorityLevel{models.LevelStaff, models.LevelLeader, models.LevelManager, models.LevelDirector} {
		if selectionpolicy.CanExecuteStrategic(level) {
			t.Errorf("level %s should not execute strategic overrides", level)
		}
	}
	if !selectionpolicy.CanExecuteStrategic(models.LevelExecutive) {
		t.Error("executives should execute strategic overrides")
	}
}

func TestCanAdvanceStatus(t *testing.T) {
	if selectionpolicy.CanAdvanceStatus(models.LevelStaff) {
		t.Error("staff should not drive lifecycle transitions")
	}
	if !selectionpolicy.CanAdvanceStatus(models.LevelLeader) {
		t.Error("leaders should drive lifecycle transitions")
	}
}
