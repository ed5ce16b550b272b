// internal/app/store/auditledger/auditstore.go

// Package auditledger persists the append-only audit chain. One entry per
// override/escalation action, keyed (selection_id, seq) with a unique
// index, each carrying a checksum over its own content. Entries are never
// updated or deleted.
package auditledger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// errSeqRace marks a lost race for the next sequence number; the retry
// loop picks up a fresh number.
var errSeqRace = errors.New("audit seq already taken")

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

// New creates the ledger store. Writes use majority write concern so an
// acknowledged append is durable before the triggering override reports
// success.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	opts := options.Collection().SetWriteConcern(writeconcern.Majority())
	return &Store{
		c:   db.Collection("audit_entries", opts),
		log: logger,
	}
}

// VerifyResult reports the outcome of an audit-chain verification.
type VerifyResult struct {
	Entries    int   `json:"entries"`
	Valid      bool  `json:"valid"`
	// FirstBadSeq is the sequence number of the first entry whose stored
	// checksum does not match its content, or whose seq breaks the chain.
	// Only meaningful when Valid is false.
	FirstBadSeq int64 `json:"first_bad_seq,omitempty"`
}

// Append assigns the next sequence number for the selection, stamps and
// checksums the entry, and inserts it. Sequence races (two writers picking
// the same seq) surface as duplicate-key errors and are retried with
// exponential backoff; any other failure is retried the same way, since an
// override must not report success until its audit record is durable.
func (s *Store) Append(ctx context.Context, entry *models.AuditEntry) error {
	op := func() error {
		return s.appendOnce(ctx, entry)
	}

	bo := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMaxElapsedTime(10*time.Second),
	), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		s.log.Error("audit append did not become durable",
			zap.String("selection_id", entry.SelectionID.Hex()),
			zap.String("action", entry.Action),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) appendOnce(ctx context.Context, entry *models.AuditEntry) error {
	seq, err := s.nextSeq(ctx, entry.SelectionID)
	if err != nil {
		return err
	}

	e := *entry
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.Seq = seq
	// Millisecond precision so the stored datetime round-trips the
	// checksum; BSON keeps nothing finer.
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	e.Checksum = e.ComputeChecksum()

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			err = errSeqRace
		}
		return err
	}
	*entry = e
	return nil
}

func (s *Store) nextSeq(ctx context.Context, selectionID primitive.ObjectID) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetProjection(bson.M{"seq": 1})

	var last struct {
		Seq int64 `bson:"seq"`
	}
	err := s.c.FindOne(ctx, bson.M{"selection_id": selectionID}, opts).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	return last.Seq + 1, nil
}

// BySelection returns the full chain for one selection in sequence order.
func (s *Store) BySelection(ctx context.Context, selectionID primitive.ObjectID) ([]models.AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"selection_id": selectionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ByActor returns recent entries recorded for one actor, newest first.
func (s *Store) ByActor(ctx context.Context, actorID primitive.ObjectID, limit int64) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.c.Find(ctx, bson.M{"actor_id": actorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Recent returns the most recent entries across all selections.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Verify recomputes every checksum in a selection's chain and checks the
// sequence is contiguous from 1. Returns the first bad sequence number on
// failure.
func (s *Store) Verify(ctx context.Context, selectionID primitive.ObjectID) (VerifyResult, error) {
	entries, err := s.BySelection(ctx, selectionID)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyEntries(entries), nil
}

// VerifyEntries is the pure half of Verify, usable on any loaded chain.
func VerifyEntries(entries []models.AuditEntry) VerifyResult {
	res := VerifyResult{Entries: len(entries), Valid: true}
	for i, e := range entries {
		if e.Seq != int64(i+1) || !e.ChecksumValid() {
			res.Valid = false
			res.FirstBadSeq = e.Seq
			return res
		}
	}
	return res
}
