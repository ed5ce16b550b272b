// internal/app/store/directory/directorystore.go

// Package directory adapts the staff-profile collection into the read-only
// candidate directory the tier engines consume. The engine never writes
// here; the HR/staffing side of the platform owns these documents.
package directory

import (
	"context"
	"sort"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("staff_profiles")}
}

// Query returns profiles matching the scope filter, name-ordered.
func (s *Store) Query(ctx context.Context, filter selection.ScopeFilter) ([]models.CandidateProfile, error) {
	q := bson.M{}
	if filter.Department != "" {
		q["department"] = filter.Department
	}
	if filter.Facility != "" {
		q["facility"] = filter.Facility
	}
	if len(filter.Skills) > 0 {
		q["skill_tags"] = bson.M{"$in": filter.Skills}
	}
	if filter.OnlyAvailable {
		q["availability"] = models.AvailabilityAvailable
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}})
	cursor, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.CandidateProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetByIDs returns the profiles for the given user ids. Missing ids are
// simply absent from the result; callers decide whether that is an error.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CandidateProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.c.Find(ctx, bson.M{"user_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.CandidateProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	// Keep caller order so ranked candidate lists stay ranked.
	pos := make(map[primitive.ObjectID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return pos[profiles[i].UserID] < pos[profiles[j].UserID]
	})
	return profiles, nil
}
