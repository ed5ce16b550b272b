// internal/app/store/selections/selectionstore.go
package selectionstore

// Terminology: Concurrency
//   - Version: the optimistic-concurrency token on a MemberSelection.
//     Every Save matches the version it loaded and bumps it by one; a
//     mismatch means another writer got there first and the caller must
//     reload and retry. Selections for different projects never contend.

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("member_selections")}
}

// Create inserts a new selection aggregate at version 1.
func (s *Store) Create(ctx context.Context, sel *models.MemberSelection) error {
	if sel.ID.IsZero() {
		sel.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = now
	}
	sel.UpdatedAt = now
	sel.Version = 1

	_, err := s.c.InsertOne(ctx, sel)
	return err
}

// Get loads a selection by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.MemberSelection, error) {
	var sel models.MemberSelection
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, selection.ErrSelectionNotFound
		}
		return nil, err
	}
	return &sel, nil
}

// Save replaces the aggregate, matching the version it was loaded at.
// Returns ErrVersionConflict if another writer bumped the version first,
// ErrSelectionNotFound if the document is gone.
func (s *Store) Save(ctx context.Context, sel *models.MemberSelection) error {
	loaded := sel.Version
	sel.Version = loaded + 1
	sel.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": sel.ID, "version": loaded}, sel)
	if err != nil {
		sel.Version = loaded
		return err
	}
	if res.MatchedCount == 0 {
		sel.Version = loaded
		// Distinguish a lost race from a missing document.
		n, cntErr := s.c.CountDocuments(ctx, bson.M{"_id": sel.ID})
		if cntErr == nil && n == 0 {
			return selection.ErrSelectionNotFound
		}
		return selection.ErrVersionConflict
	}
	return nil
}

// ListByProject returns the selections for one project, newest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]models.MemberSelection, error) {
	return s.list(ctx, bson.M{"project_id": projectID}, limit)
}

// ListByStatus returns selections in the given lifecycle status, newest
// first. Used by the approval queue (pending_approval) and reporting.
func (s *Store) ListByStatus(ctx context.Context, status string, limit int64) ([]models.MemberSelection, error) {
	return s.list(ctx, bson.M{"status": status}, limit)
}

func (s *Store) list(ctx context.Context, filter bson.M, limit int64) ([]models.MemberSelection, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sels []models.MemberSelection
	if err := cursor.All(ctx, &sels); err != nil {
		return nil, err
	}
	return sels, nil
}
