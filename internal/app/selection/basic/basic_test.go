package basic_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/app/selection/basic"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"github.com/dalemusser/selecthub/internal/testutil"
)

type world struct {
	dir    *testutil.MemoryDirectory
	auth   *testutil.StaticAuthority
	repo   *testutil.MemoryRepo
	notify *testutil.RecordingNotifier
	engine *basic.Engine

	selector primitive.ObjectID
}

func newWorld(profiles ...models.CandidateProfile) *world {
	w := &world{
		dir:      &testutil.MemoryDirectory{Profiles: profiles},
		auth:     &testutil.StaticAuthority{Tiers: map[primitive.ObjectID]models.AuthorityLevel{}},
		repo:     testutil.NewMemoryRepo(),
		notify:   &testutil.RecordingNotifier{},
		selector: primitive.NewObjectID(),
	}
	w.auth.Tiers[w.selector] = models.LevelManager
	w.engine = basic.New(w.dir, w.auth, w.repo, w.notify, zap.NewNop())
	return w
}

func request(w *world, candidates ...primitive.ObjectID) basic.SelectRequest {
	return basic.SelectRequest{
		ProjectID:    primitive.NewObjectID(),
		SelectorID:   w.selector,
		OwnerID:      primitive.NewObjectID(),
		SupervisorID: primitive.NewObjectID(),
		CandidateIDs: candidates,
		Reason:       "icu coverage",
	}
}

func TestSelect_CreatesDraftWithRequiredAssignments(t *testing.T) {
	nurse := testutil.Profile("Nurse", "surgery", models.ProfessionNursing, "triage")
	doc := testutil.Profile("Doc", "surgery", models.ProfessionMedical)
	w := newWorld(nurse, doc)

	req := request(w, nurse.UserID, doc.UserID)
	sel, err := w.engine.Select(context.Background(), req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if sel.Tier != models.TierBasic {
		t.Errorf("Tier = %q, want %q", sel.Tier, models.TierBasic)
	}
	if sel.Status != models.StatusDraft {
		t.Errorf("Status = %q, want %q", sel.Status, models.StatusDraft)
	}
	if sel.Version != 1 {
		t.Errorf("Version = %d, want 1", sel.Version)
	}

	// owner + supervisor + two members
	if len(sel.Assignments) != 4 {
		t.Fatalf("expected 4 assignments, got %d", len(sel.Assignments))
	}
	if sel.Assignments[0].Role != models.RoleProjectOwner || !sel.Assignments[0].Required {
		t.Error("first assignment should be the required project owner")
	}
	if sel.Assignments[1].Role != models.RoleSupervisor || !sel.Assignments[1].Required {
		t.Error("second assignment should be the required supervisor")
	}
	for _, a := range sel.Assignments[2:] {
		if a.Role != models.RoleTeamMember {
			t.Errorf("member role = %q, want %q", a.Role, models.RoleTeamMember)
		}
		if a.Reason != "icu coverage" {
			t.Errorf("member reason = %q, want the request reason", a.Reason)
		}
	}

	if sel.Balance == nil {
		t.Fatal("expected a profession balance snapshot")
	}
	if sel.Balance.BalanceScore != 100 {
		t.Errorf("BalanceScore = %v, want 100 (one nurse, admin within bounds)", sel.Balance.BalanceScore)
	}

	if kinds := w.notify.Kinds(); len(kinds) != 1 || kinds[0] != "selection_created" {
		t.Errorf("notifications = %v, want [selection_created]", kinds)
	}
}

func TestSelect_PermissionDenied(t *testing.T) {
	nurse := testutil.Profile("Nurse", "surgery", models.ProfessionNursing)
	w := newWorld(nurse)

	for _, level := range []models.AuthorityLevel{models.LevelStaff, models.LevelExecutive} {
		w.auth.Tiers[w.selector] = level
		_, err := w.engine.Select(context.Background(), request(w, nurse.UserID))
		if !errors.Is(err, selection.ErrPermissionDenied) {
			t.Errorf("level %s: expected ErrPermissionDenied, got %v", level, err)
		}
	}
}

func TestSelect_UnknownCandidate(t *testing.T) {
	nurse := testutil.Profile("Nurse", "surgery", models.ProfessionNursing)
	w := newWorld(nurse)

	_, err := w.engine.Select(context.Background(), request(w, nurse.UserID, primitive.NewObjectID()))
	if !errors.Is(err, selection.ErrCandidateUnavailable) {
		t.Fatalf("expected ErrCandidateUnavailable for an unknown candidate, got %v", err)
	}
}

func TestSelect_UnavailableCandidate(t *testing.T) {
	busy := testutil.Profile("Busy", "surgery", models.ProfessionNursing)
	busy.Availability = models.AvailabilityBusy
	w := newWorld(busy)

	_, err := w.engine.Select(context.Background(), request(w, busy.UserID))
	if !errors.Is(err, selection.ErrCandidateUnavailable) {
		t.Fatalf("expected ErrCandidateUnavailable for a busy candidate, got %v", err)
	}
}

func TestSelect_SizeExceeded(t *testing.T) {
	pool := testutil.Pool(3)
	w := newWorld(pool...)

	req := request(w, pool[0].UserID, pool[1].UserID, pool[2].UserID)
	req.Criteria.MaxTeamSize = 2
	_, err := w.engine.Select(context.Background(), req)
	if !errors.Is(err, selection.ErrSizeExceeded) {
		t.Fatalf("expected ErrSizeExceeded, got %v", err)
	}
}

func TestSelect_DefaultMaxTeamSize(t *testing.T) {
	pool := testutil.Pool(basic.DefaultMaxTeamSize + 1)
	w := newWorld(pool...)

	ids := make([]primitive.ObjectID, 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.UserID)
	}
	_, err := w.engine.Select(context.Background(), request(w, ids...))
	if !errors.Is(err, selection.ErrSizeExceeded) {
		t.Fatalf("expected ErrSizeExceeded past the default cap, got %v", err)
	}
}
