package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/app/selection/lifecycle"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"github.com/dalemusser/selecthub/internal/testutil"
)

type world struct {
	auth   *testutil.StaticAuthority
	repo   *testutil.MemoryRepo
	ledger *testutil.MemoryLedger
	notify *testutil.RecordingNotifier
	sched  *testutil.FakeScheduler
	engine *lifecycle.Engine

	actor primitive.ObjectID
}

func newWorld() *world {
	w := &world{
		auth:   &testutil.StaticAuthority{Tiers: map[primitive.ObjectID]models.AuthorityLevel{}},
		repo:   testutil.NewMemoryRepo(),
		ledger: &testutil.MemoryLedger{},
		notify: &testutil.RecordingNotifier{},
		sched:  testutil.NewFakeScheduler(),
		actor:  primitive.NewObjectID(),
	}
	w.auth.Tiers[w.actor] = models.LevelManager
	w.engine = lifecycle.New(w.auth, w.repo, w.ledger, w.notify, w.sched, zap.NewNop())
	return w
}

func seed(t *testing.T, w *world, status string) *models.MemberSelection {
	t.Helper()
	sel := &models.MemberSelection{
		ProjectID:  primitive.NewObjectID(),
		SelectorID: primitive.NewObjectID(),
		Tier:       models.TierBasic,
		Status:     status,
	}
	if err := w.repo.Create(context.Background(), sel); err != nil {
		t.Fatalf("create: %v", err)
	}
	return sel
}

func TestAdvance(t *testing.T) {
	w := newWorld()
	sel := seed(t, w, models.StatusDraft)

	got, err := w.engine.Advance(context.Background(), sel.ID, w.actor, models.StatusPendingApproval, "team confirmed")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got.Status != models.StatusPendingApproval {
		t.Errorf("status = %q, want pending_approval", got.Status)
	}

	entries := w.ledger.ByAction(models.AuditStatusTransition)
	if len(entries) != 1 {
		t.Fatalf("expected one status_transition entry, got %d", len(entries))
	}
	if entries[0].Details["from"] != models.StatusDraft || entries[0].Details["to"] != models.StatusPendingApproval {
		t.Errorf("entry details = %v, want from/to recorded", entries[0].Details)
	}
	if entries[0].Justification != "team confirmed" {
		t.Errorf("justification = %q", entries[0].Justification)
	}

	if kinds := w.notify.Kinds(); len(kinds) != 1 || kinds[0] != "status_changed" {
		t.Errorf("notifications = %v, want [status_changed]", kinds)
	}
}

func TestAdvance_FullLifecycle(t *testing.T) {
	w := newWorld()
	sel := seed(t, w, models.StatusDraft)

	for _, to := range []string{models.StatusPendingApproval, models.StatusApproved, models.StatusActive, models.StatusCompleted} {
		got, err := w.engine.Advance(context.Background(), sel.ID, w.actor, to, "")
		if err != nil {
			t.Fatalf("Advance to %s: %v", to, err)
		}
		if got.Status != to {
			t.Fatalf("status = %q, want %q", got.Status, to)
		}
	}

	if _, err := w.engine.Advance(context.Background(), sel.ID, w.actor, models.StatusCancelled, ""); !errors.Is(err, selection.ErrInvalidTransition) {
		t.Errorf("completed selections must not cancel, got %v", err)
	}
}

func TestAdvance_IllegalEdge(t *testing.T) {
	w := newWorld()
	sel := seed(t, w, models.StatusDraft)

	_, err := w.engine.Advance(context.Background(), sel.ID, w.actor, models.StatusActive, "")
	if !errors.Is(err, selection.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for draft -> active, got %v", err)
	}
	if len(w.ledger.Entries) != 0 {
		t.Error("refused transitions must not write the ledger")
	}
}

func TestAdvance_PermissionDenied(t *testing.T) {
	w := newWorld()
	sel := seed(t, w, models.StatusDraft)
	w.auth.Tiers[w.actor] = models.LevelStaff

	_, err := w.engine.Advance(context.Background(), sel.ID, w.actor, models.StatusPendingApproval, "")
	if !errors.Is(err, selection.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestAdvance_NotFound(t *testing.T) {
	w := newWorld()

	_, err := w.engine.Advance(context.Background(), primitive.NewObjectID(), w.actor, models.StatusPendingApproval, "")
	if !errors.Is(err, selection.ErrSelectionNotFound) {
		t.Fatalf("expected ErrSelectionNotFound, got %v", err)
	}
}

func TestCancel_DisarmsPendingTimers(t *testing.T) {
	w := newWorld()

	now := time.Now().UTC()
	sel := &models.MemberSelection{
		ProjectID:  primitive.NewObjectID(),
		SelectorID: primitive.NewObjectID(),
		Tier:       models.TierCollaborative,
		Status:     models.StatusDraft,
		Stakeholders: []models.StakeholderParticipant{
			{UserID: primitive.NewObjectID(), Weight: 1},
		},
		Rounds: []models.VotingRound{{Number: 1, StartedAt: now, Deadline: now.Add(time.Hour)}},
	}
	if err := w.repo.Create(context.Background(), sel); err != nil {
		t.Fatalf("create: %v", err)
	}
	tag := selection.RoundDeadlineTag(sel.ID, 1)
	if err := w.sched.Schedule(tag, now.Add(time.Hour), func(context.Context) {}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	got, err := w.engine.Cancel(context.Background(), sel.ID, w.actor, "project shelved")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
	if w.sched.Pending(tag) {
		t.Error("cancelling should disarm the open round's deadline timer")
	}
}

func TestCancel_DisarmsEmergencyEscalation(t *testing.T) {
	w := newWorld()

	now := time.Now().UTC()
	sel := &models.MemberSelection{
		ProjectID:  primitive.NewObjectID(),
		SelectorID: primitive.NewObjectID(),
		Tier:       models.TierEmergency,
		Status:     models.StatusActive,
		Emergency: &models.EmergencyContext{
			EmergencyType:    models.EmergencyOutbreak,
			ResponseDeadline: now.Add(time.Hour),
		},
	}
	if err := w.repo.Create(context.Background(), sel); err != nil {
		t.Fatalf("create: %v", err)
	}
	tag := selection.EmergencyEscalationTag(sel.ID)
	if err := w.sched.Schedule(tag, now.Add(30*time.Minute), func(context.Context) {}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := w.engine.Cancel(context.Background(), sel.ID, w.actor, "false alarm"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if w.sched.Pending(tag) {
		t.Error("cancelling should disarm the auto-escalation timer")
	}
}
