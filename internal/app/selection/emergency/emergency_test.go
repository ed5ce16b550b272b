package emergency

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"github.com/dalemusser/selecthub/internal/testutil"
)

type world struct {
	dir    *testutil.MemoryDirectory
	auth   *testutil.StaticAuthority
	repo   *testutil.MemoryRepo
	ledger *testutil.MemoryLedger
	notify *testutil.RecordingNotifier
	sched  *testutil.FakeScheduler
	engine *Engine

	executive primitive.ObjectID
}

func newWorld(cfg Config, profiles ...models.CandidateProfile) *world {
	w := &world{
		dir:       &testutil.MemoryDirectory{Profiles: profiles},
		auth:      &testutil.StaticAuthority{Tiers: map[primitive.ObjectID]models.AuthorityLevel{}, EmergencyTypes: map[primitive.ObjectID][]string{}},
		repo:      testutil.NewMemoryRepo(),
		ledger:    &testutil.MemoryLedger{},
		notify:    &testutil.RecordingNotifier{},
		sched:     testutil.NewFakeScheduler(),
		executive: primitive.NewObjectID(),
	}
	w.auth.Tiers[w.executive] = models.LevelDirector
	w.auth.EmergencyTypes[w.executive] = []string{models.EmergencyOutbreak, models.EmergencySystemFailure}
	w.engine = New(w.dir, w.auth, w.repo, w.ledger, w.notify, w.sched, zap.NewNop(), cfg)
	return w
}

func responderPool() []models.CandidateProfile {
	professions := []string{
		models.ProfessionMedical, models.ProfessionMedical,
		models.ProfessionNursing, models.ProfessionNursing, models.ProfessionNursing,
		models.ProfessionCare, models.ProfessionAdmin, models.ProfessionTechnical,
	}
	pool := make([]models.CandidateProfile, 0, len(professions))
	for i, prof := range professions {
		p := testutil.Profile("Responder "+string(rune('A'+i)), "surgery", prof, "triage")
		p.ExperienceYears = 3 + i
		pool = append(pool, p)
	}
	return pool
}

func executeReq(w *world) ExecuteRequest {
	return ExecuteRequest{
		ProjectID:        primitive.NewObjectID(),
		ExecutiveID:      w.executive,
		EmergencyType:    models.EmergencyOutbreak,
		UrgencyLevel:     models.UrgencyCritical,
		Description:      "respiratory outbreak on ward 4",
		ImpactAssessment: "two wards affected, admissions paused",
	}
}

func TestExecute(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)

	sel, err := w.engine.Execute(context.Background(), executeReq(w))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if sel.Tier != models.TierEmergency {
		t.Errorf("Tier = %q, want emergency", sel.Tier)
	}
	if sel.Status != models.StatusActive {
		t.Errorf("Status = %q, want active: an override activates immediately", sel.Status)
	}
	if sel.Emergency == nil {
		t.Fatal("expected the emergency context recorded")
	}
	if sel.Emergency.EmergencyType != models.EmergencyOutbreak {
		t.Errorf("EmergencyType = %q", sel.Emergency.EmergencyType)
	}
	if sel.Emergency.TimeWindowMinutes != int(DefaultTimeWindow/time.Minute) {
		t.Errorf("TimeWindowMinutes = %d, want the default window", sel.Emergency.TimeWindowMinutes)
	}
	if sel.Emergency.Readiness == nil {
		t.Error("expected a readiness assessment")
	}

	// owner + commander plus the outbreak template's core and support
	if len(sel.Assignments) < 2 {
		t.Fatalf("assignments = %d, want at least owner and commander", len(sel.Assignments))
	}
	if sel.Assignments[0].UserID != w.executive || sel.Assignments[0].Role != models.RoleProjectOwner {
		t.Error("the overriding executive should own the selection")
	}
	if sel.Assignments[1].Role != models.RoleSupervisor {
		t.Error("the commander should supervise")
	}
	seen := map[primitive.ObjectID]bool{}
	for _, a := range sel.Assignments {
		if seen[a.UserID] {
			t.Errorf("user %s assigned twice", a.UserID.Hex())
		}
		seen[a.UserID] = true
	}

	entries := w.ledger.ByAction(models.AuditEmergencyOverride)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one override audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.SelectionID != sel.ID || entry.ActorID != w.executive {
		t.Error("audit entry should name the selection and the executive")
	}
	if len(entry.BypassedSteps) != 2 {
		t.Errorf("BypassedSteps = %v, want the two skipped approval steps", entry.BypassedSteps)
	}
	if entry.ReportDue == nil {
		t.Fatal("emergency override must carry a reporting deadline")
	}

	if !w.sched.Pending(selection.EmergencyEscalationTag(sel.ID)) {
		t.Error("auto-escalation timer should be armed")
	}
	if kinds := w.notify.Kinds(); len(kinds) != 1 || kinds[0] != "emergency_assignment" {
		t.Errorf("notifications = %v, want [emergency_assignment]", kinds)
	}
}

func TestExecute_ReportWindowConfig(t *testing.T) {
	w := newWorld(Config{ReportWindow: 24 * time.Hour}, responderPool()...)

	before := time.Now().UTC()
	_, err := w.engine.Execute(context.Background(), executeReq(w))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	entry := w.ledger.ByAction(models.AuditEmergencyOverride)[0]
	due := entry.ReportDue.Sub(before)
	if due < 23*time.Hour || due > 25*time.Hour {
		t.Errorf("report due in %v, want about 24h", due)
	}
}

func TestExecute_PermissionDenied(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)

	// Below the authority threshold.
	w.auth.Tiers[w.executive] = models.LevelManager
	if _, err := w.engine.Execute(context.Background(), executeReq(w)); !errors.Is(err, selection.ErrPermissionDenied) {
		t.Errorf("manager: expected ErrPermissionDenied, got %v", err)
	}

	// Right level, wrong emergency type.
	w.auth.Tiers[w.executive] = models.LevelDirector
	req := executeReq(w)
	req.EmergencyType = models.EmergencyNaturalDisaster
	if _, err := w.engine.Execute(context.Background(), req); !errors.Is(err, selection.ErrPermissionDenied) {
		t.Errorf("unauthorized type: expected ErrPermissionDenied, got %v", err)
	}

	if len(w.ledger.Entries) != 0 {
		t.Error("refused overrides must not write the ledger")
	}
}

func TestExecute_EmptyPool(t *testing.T) {
	w := newWorld(Config{})

	_, err := w.engine.Execute(context.Background(), executeReq(w))
	if !errors.Is(err, selection.ErrInsufficientCandidates) {
		t.Fatalf("expected ErrInsufficientCandidates, got %v", err)
	}
}

func TestExecute_AuditFailureFailsTheOverride(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)
	w.ledger.FailAppends = 1

	_, err := w.engine.Execute(context.Background(), executeReq(w))
	if !errors.Is(err, selection.ErrAuditWriteFailed) {
		t.Fatalf("expected ErrAuditWriteFailed, got %v", err)
	}

	// The assembled team must not survive as an unaudited active selection.
	active, err := w.repo.ListByStatus(context.Background(), models.StatusActive, 10)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("an active selection remains after the audit write failed: %+v", active[0])
	}
	voided, err := w.repo.ListByStatus(context.Background(), models.StatusCancelled, 10)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(voided) != 1 {
		t.Fatalf("expected the selection voided, got %d cancelled", len(voided))
	}
	if voided[0].EscalationNote == "" {
		t.Error("the voided selection should say why it was cancelled")
	}
}

func TestMarkResponseStarted(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)
	sel, err := w.engine.Execute(context.Background(), executeReq(w))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := w.engine.MarkResponseStarted(context.Background(), sel.ID, w.executive)
	if err != nil {
		t.Fatalf("MarkResponseStarted: %v", err)
	}
	if got.Emergency.ResponseStartedAt == nil {
		t.Fatal("expected ResponseStartedAt stamped")
	}
	if w.sched.Pending(selection.EmergencyEscalationTag(sel.ID)) {
		t.Error("starting the response should disarm the escalation timer")
	}

	_, err = w.engine.MarkResponseStarted(context.Background(), sel.ID, w.executive)
	if !errors.Is(err, selection.ErrResponseAlreadyStarted) {
		t.Fatalf("second call: expected ErrResponseAlreadyStarted, got %v", err)
	}
}

func TestMarkResponseStarted_WrongTier(t *testing.T) {
	w := newWorld(Config{})
	sel := &models.MemberSelection{
		ProjectID:  primitive.NewObjectID(),
		SelectorID: primitive.NewObjectID(),
		Tier:       models.TierBasic,
		Status:     models.StatusDraft,
	}
	if err := w.repo.Create(context.Background(), sel); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := w.engine.MarkResponseStarted(context.Background(), sel.ID, primitive.NewObjectID())
	if !errors.Is(err, selection.ErrWrongTier) {
		t.Fatalf("expected ErrWrongTier, got %v", err)
	}
}

func TestEscalateUnstartedResponse(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)
	sel, err := w.engine.Execute(context.Background(), executeReq(w))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The delay elapses without the response starting.
	if !w.sched.Fire(context.Background(), selection.EmergencyEscalationTag(sel.ID)) {
		t.Fatal("expected the escalation timer to be pending")
	}

	entries := w.ledger.ByAction(models.AuditAutoEscalation)
	if len(entries) != 1 {
		t.Fatalf("expected one auto_escalation entry, got %d", len(entries))
	}
	if entries[0].SelectionID != sel.ID {
		t.Error("escalation entry should reference the selection")
	}

	kinds := w.notify.Kinds()
	if kinds[len(kinds)-1] != "response_escalated" {
		t.Errorf("last notification = %q, want response_escalated", kinds[len(kinds)-1])
	}
}

func TestEscalateUnstartedResponse_Noops(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)
	sel, err := w.engine.Execute(context.Background(), executeReq(w))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := w.engine.MarkResponseStarted(context.Background(), sel.ID, w.executive); err != nil {
		t.Fatalf("MarkResponseStarted: %v", err)
	}

	// Started response: the late callback must do nothing.
	if err := w.engine.EscalateUnstartedResponse(context.Background(), sel.ID, w.executive); err != nil {
		t.Fatalf("EscalateUnstartedResponse: %v", err)
	}
	if len(w.ledger.ByAction(models.AuditAutoEscalation)) != 0 {
		t.Error("started response should not escalate")
	}

	// Missing selection: also a no-op, not an error.
	if err := w.engine.EscalateUnstartedResponse(context.Background(), primitive.NewObjectID(), w.executive); err != nil {
		t.Fatalf("missing selection: %v", err)
	}
}

func TestRearmEscalations(t *testing.T) {
	w := newWorld(Config{}, responderPool()...)
	sel, err := w.engine.Execute(context.Background(), executeReq(w))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	fresh := testutil.NewFakeScheduler()
	restarted := New(w.dir, w.auth, w.repo, w.ledger, w.notify, fresh, zap.NewNop(), Config{})
	if err := restarted.RearmEscalations(context.Background(), 100); err != nil {
		t.Fatalf("RearmEscalations: %v", err)
	}
	if !fresh.Pending(selection.EmergencyEscalationTag(sel.ID)) {
		t.Error("unstarted response should be re-armed after restart")
	}

	// A started response must not be re-armed.
	if _, err := w.engine.MarkResponseStarted(context.Background(), sel.ID, w.executive); err != nil {
		t.Fatalf("MarkResponseStarted: %v", err)
	}
	second := testutil.NewFakeScheduler()
	restarted = New(w.dir, w.auth, w.repo, w.ledger, w.notify, second, zap.NewNop(), Config{})
	if err := restarted.RearmEscalations(context.Background(), 100); err != nil {
		t.Fatalf("RearmEscalations: %v", err)
	}
	if second.Pending(selection.EmergencyEscalationTag(sel.ID)) {
		t.Error("started response should not be re-armed")
	}
}
