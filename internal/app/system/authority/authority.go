// internal/app/system/authority/authority.go

// Package authority resolves actor identities to their authority tier.
// Tiers are looked up from the staff directory, never computed here; the
// resolver is the engine-side adapter over the permission directory the
// wider platform maintains.
package authority

import (
	"context"
	"errors"

	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Resolver struct {
	c *mongo.Collection
}

func NewResolver(db *mongo.Database) *Resolver {
	return &Resolver{c: db.Collection("staff_profiles")}
}

// TierOf returns the actor's authority level. Unknown actors resolve to
// LevelUnresolved (0), which every tier policy rejects.
func (r *Resolver) TierOf(ctx context.Context, actorID primitive.ObjectID) (models.AuthorityLevel, error) {
	proj := options.FindOne().SetProjection(bson.M{"authority_tier": 1})

	var doc struct {
		AuthorityTier int `bson:"authority_tier"`
	}
	err := r.c.FindOne(ctx, bson.M{"user_id": actorID}, proj).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LevelUnresolved, nil
		}
		return models.LevelUnresolved, err
	}
	if doc.AuthorityTier < int(models.LevelStaff) || doc.AuthorityTier > int(models.LevelExecutive) {
		return models.LevelUnresolved, nil
	}
	return models.AuthorityLevel(doc.AuthorityTier), nil
}

// AuthorizedEmergencyTypes returns the emergency types the actor may
// respond to. An empty list means none.
func (r *Resolver) AuthorizedEmergencyTypes(ctx context.Context, actorID primitive.ObjectID) ([]string, error) {
	proj := options.FindOne().SetProjection(bson.M{"emergency_types": 1})

	var doc struct {
		EmergencyTypes []string `bson:"emergency_types"`
	}
	err := r.c.FindOne(ctx, bson.M{"user_id": actorID}, proj).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.EmergencyTypes, nil
}
