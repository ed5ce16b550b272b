package directory_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/app/store/directory"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"github.com/dalemusser/selecthub/internal/testutil"
)

func TestQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	nurse := testutil.Profile("Ada Quinn", "surgery", models.ProfessionNursing, "triage")
	busy := testutil.Profile("Ben Ito", "surgery", models.ProfessionMedical, "icu")
	busy.Availability = models.AvailabilityBusy
	elsewhere := testutil.Profile("Cam Diaz", "radiology", models.ProfessionTechnical, "imaging")

	fx.InsertProfile(ctx, nurse, models.LevelStaff)
	fx.InsertProfile(ctx, busy, models.LevelStaff)
	fx.InsertProfile(ctx, elsewhere, models.LevelStaff)

	store := directory.New(db)

	all, err := store.Query(ctx, selection.ScopeFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("empty filter = %d profiles, want 3", len(all))
	}
	// Name-ordered.
	if all[0].FullName != "Ada Quinn" || all[2].FullName != "Cam Diaz" {
		t.Errorf("expected name ordering, got %s..%s", all[0].FullName, all[2].FullName)
	}

	surgery, err := store.Query(ctx, selection.ScopeFilter{Department: "surgery"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(surgery) != 2 {
		t.Errorf("surgery = %d profiles, want 2", len(surgery))
	}

	available, err := store.Query(ctx, selection.ScopeFilter{Department: "surgery", OnlyAvailable: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(available) != 1 || available[0].FullName != "Ada Quinn" {
		t.Errorf("available surgery staff = %v", available)
	}

	skilled, err := store.Query(ctx, selection.ScopeFilter{Skills: []string{"triage", "imaging"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(skilled) != 2 {
		t.Errorf("skill filter = %d profiles, want 2 (any match)", len(skilled))
	}
}

func TestGetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	a := testutil.Profile("Ada Quinn", "surgery", models.ProfessionNursing)
	b := testutil.Profile("Ben Ito", "surgery", models.ProfessionMedical)
	fx.InsertProfile(ctx, a, models.LevelStaff)
	fx.InsertProfile(ctx, b, models.LevelStaff)

	store := directory.New(db)

	// Caller order is preserved, missing ids are absent.
	got, err := store.GetByIDs(ctx, []primitive.ObjectID{b.UserID, primitive.NewObjectID(), a.UserID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if got[0].UserID != b.UserID || got[1].UserID != a.UserID {
		t.Error("GetByIDs should preserve caller order")
	}

	none, err := store.GetByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetByIDs empty: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("empty input should return nothing, got %d", len(none))
	}
}

func TestFetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	p := testutil.Profile("Dana Reyes", "surgery", models.ProfessionMedical)
	fx.InsertProfile(ctx, p, models.LevelDirector)

	f := directory.NewFetcher(db)

	u := f.FetchUser(ctx, p.UserID.Hex())
	if u == nil {
		t.Fatal("expected a session user")
	}
	if u.ID != p.UserID.Hex() || u.Name != "Dana Reyes" || u.Level != int(models.LevelDirector) {
		t.Errorf("session user = %+v", u)
	}

	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("unknown user should fetch as nil")
	}
	if f.FetchUser(ctx, "not-hex") != nil {
		t.Error("malformed id should fetch as nil")
	}
}
