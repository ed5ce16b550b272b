// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/selecthub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Profile builds a plausible available staff profile. Override fields on
// the result for scenario-specific tests.
func Profile(fullName, department, profession string, skills ...string) models.CandidateProfile {
	return models.CandidateProfile{
		UserID:          primitive.NewObjectID(),
		FullName:        fullName,
		Department:      department,
		Facility:        "main",
		Profession:      profession,
		SkillTags:       skills,
		ExperienceYears: 5,
		ExpertiseLevel:  models.ExpertiseIntermediate,
		WorkloadPercent: 50,
		MonthlyCost:     8000,
		Availability:    models.AvailabilityAvailable,
	}
}

// Pool builds n available profiles spread across a few departments and
// professions, enough for the optimizer and voting tests to have variety.
func Pool(n int) []models.CandidateProfile {
	departments := []string{"surgery", "radiology", "oncology"}
	professions := []string{"physician", "nurse", "technician", "administrator"}
	pool := make([]models.CandidateProfile, 0, n)
	for i := 0; i < n; i++ {
		p := Profile(
			"Staff "+string(rune('A'+i%26)),
			departments[i%len(departments)],
			professions[i%len(professions)],
			"triage",
		)
		p.ExperienceYears = 1 + i%12
		p.WorkloadPercent = float64(20 + 10*(i%7))
		pool = append(pool, p)
	}
	return pool
}

// Fixtures provides helpers for seeding the test database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// InsertProfile writes a staff profile with the given authority tier and
// authorized emergency types into the directory collection.
func (f *Fixtures) InsertProfile(ctx context.Context, p models.CandidateProfile, tier models.AuthorityLevel, emergencyTypes ...string) {
	f.t.Helper()

	doc := bson.M{
		"user_id":          p.UserID,
		"full_name":        p.FullName,
		"department":       p.Department,
		"facility":         p.Facility,
		"profession":       p.Profession,
		"skill_tags":       p.SkillTags,
		"experience_years": p.ExperienceYears,
		"expertise_level":  p.ExpertiseLevel,
		"workload_percent": p.WorkloadPercent,
		"monthly_cost":     p.MonthlyCost,
		"availability":     p.Availability,
		"authority_tier":   int(tier),
	}
	if len(emergencyTypes) > 0 {
		doc["emergency_types"] = emergencyTypes
	}
	if _, err := f.db.Collection("staff_profiles").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert staff profile: %v", err)
	}
}
