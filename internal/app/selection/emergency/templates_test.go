package emergency

import (
	"testing"
	"time"

	"github.com/dalemusser/selecthub/internal/domain/models"
	"github.com/dalemusser/selecthub/internal/testutil"
)

func TestTemplateFor(t *testing.T) {
	if tpl := templateFor(models.EmergencyOutbreak); tpl.Name != "outbreak response" {
		t.Errorf("outbreak template = %q", tpl.Name)
	}
	if tpl := templateFor(models.EmergencySystemFailure); tpl.CoreProfessions[0] != models.ProfessionTechnical {
		t.Error("system failure core should be technical staff")
	}
	if tpl := templateFor("alien invasion"); tpl.Name != defaultTemplate.Name {
		t.Errorf("unknown type should use the default template, got %q", tpl.Name)
	}
}

func TestAssembleTeam(t *testing.T) {
	expert := testutil.Profile("Expert", "surgery", models.ProfessionMedical, "triage")
	expert.ExpertiseLevel = models.ExpertiseExpert
	expert.ExperienceYears = 20

	pool := []models.CandidateProfile{
		expert,
		testutil.Profile("N1", "surgery", models.ProfessionNursing),
		testutil.Profile("N2", "surgery", models.ProfessionNursing),
		testutil.Profile("M1", "surgery", models.ProfessionMedical),
		testutil.Profile("C1", "surgery", models.ProfessionCare),
		testutil.Profile("A1", "surgery", models.ProfessionAdmin),
	}

	commander, core, support := assembleTeam(pool, templateFor(models.EmergencyOutbreak))
	if commander == nil {
		t.Fatal("expected a commander")
	}
	if commander.FullName != "Expert" {
		t.Errorf("commander = %q, want the expert with the highest readiness", commander.FullName)
	}

	seen := map[string]bool{commander.UserID.Hex(): true}
	for _, p := range append(core, support...) {
		if seen[p.UserID.Hex()] {
			t.Errorf("%s assigned to more than one slot", p.FullName)
		}
		seen[p.UserID.Hex()] = true
	}

	// The outbreak template asks for 4 core responders; only 3 medical or
	// nursing remain after the commander, so the last slot backfills.
	if len(core) != 4 {
		t.Errorf("core = %d members, want 4", len(core))
	}
}

func TestAssembleTeam_EmptyPool(t *testing.T) {
	commander, core, support := assembleTeam(nil, defaultTemplate)
	if commander != nil || core != nil || support != nil {
		t.Error("empty pool should produce no assignments")
	}
}

func TestAssessReadiness(t *testing.T) {
	now := time.Now().UTC()

	ready := []models.CandidateProfile{
		{Availability: models.AvailabilityAvailable, ExpertiseLevel: models.ExpertiseExpert},
		{Availability: models.AvailabilityAvailable, ExpertiseLevel: models.ExpertiseAdvanced},
	}
	a := AssessReadiness(ready, now)
	if a.AvailabilityScore != 100 {
		t.Errorf("AvailabilityScore = %v, want 100", a.AvailabilityScore)
	}
	if a.CapabilityScore != 90 {
		t.Errorf("CapabilityScore = %v, want 90", a.CapabilityScore)
	}
	if a.OverallReadiness != 95 {
		t.Errorf("OverallReadiness = %v, want 95", a.OverallReadiness)
	}
	if len(a.PotentialGaps) != 0 {
		t.Errorf("high readiness should name no gaps, got %v", a.PotentialGaps)
	}
}

func TestAssessReadiness_NamesGaps(t *testing.T) {
	now := time.Now().UTC()

	shaky := []models.CandidateProfile{
		{Availability: models.AvailabilityUnavailable, ExpertiseLevel: models.ExpertiseBeginner},
		{Availability: models.AvailabilityOffDuty, ExpertiseLevel: models.ExpertiseBeginner},
	}
	a := AssessReadiness(shaky, now)
	if a.OverallReadiness >= models.ReadinessGapThreshold {
		t.Fatalf("setup: readiness %v should be under the gap threshold", a.OverallReadiness)
	}
	if len(a.PotentialGaps) == 0 {
		t.Error("low readiness must name its gaps")
	}
}

func TestAssessReadiness_EmptyTeam(t *testing.T) {
	a := AssessReadiness(nil, time.Now().UTC())
	if a.OverallReadiness != 0 {
		t.Errorf("empty team readiness = %v, want 0", a.OverallReadiness)
	}
	if len(a.PotentialGaps) != 1 {
		t.Errorf("expected the no-members gap, got %v", a.PotentialGaps)
	}
}
