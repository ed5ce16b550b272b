// internal/app/store/directory/fetcher.go
package directory

import (
	"context"

	"github.com/dalemusser/selecthub/internal/app/system/auth"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so each request sees the user's
// current authority tier instead of whatever was cached at sign-in.
type Fetcher struct {
	profiles *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{profiles: db.Collection("staff_profiles")}
}

// FetchUser retrieves a staff profile by user ID and returns nil if the
// profile is missing or any error occurs. This implements auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	proj := options.FindOne().SetProjection(bson.M{
		"user_id":        1,
		"full_name":      1,
		"authority_tier": 1,
	})

	var doc struct {
		UserID        primitive.ObjectID `bson:"user_id"`
		FullName      string             `bson:"full_name"`
		AuthorityTier int                `bson:"authority_tier"`
	}
	if err := f.profiles.FindOne(ctx, bson.M{"user_id": oid}, proj).Decode(&doc); err != nil {
		return nil
	}

	return &auth.SessionUser{
		ID:    doc.UserID.Hex(),
		Name:  doc.FullName,
		Level: doc.AuthorityTier,
	}
}
