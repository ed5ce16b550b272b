// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureSelections(ctx, db); err != nil {
		problems = append(problems, "member_selections: "+err.Error())
	}
	if err := ensureAuditEntries(ctx, db); err != nil {
		problems = append(problems, "audit_entries: "+err.Error())
	}
	if err := ensureStaffProfiles(ctx, db); err != nil {
		problems = append(problems, "staff_profiles: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()

		// Load existing indexes so reruns reuse instead of recreating.
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.String("took", time.Since(start).String()))
			continue
		}

		if created, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
		} else {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureSelections(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("member_selections")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-project listings, latest-first
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_selections_project_created"),
		},
		// Status sweeps (startup timer recovery, dashboards)
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_selections_status_created"),
		},
		// Per-selector listings
		{
			Keys:    bson.D{{Key: "selector_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_selections_selector_created"),
		},
	})
}

func ensureAuditEntries(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_entries")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// The ledger's append-only ordering: one entry per (selection, seq).
		// The unique constraint is what turns concurrent appends into
		// retryable races instead of silent forks.
		{
			Keys:    bson.D{{Key: "selection_id", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_audit_selection_seq"),
		},
		// Per-actor review, latest-first
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_created"),
		},
		// Site-wide recent overrides
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
	})
}

func ensureStaffProfiles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("staff_profiles")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One profile per user
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_profiles_user"),
		},
		// Directory scope queries
		{
			Keys:    bson.D{{Key: "department", Value: 1}, {Key: "availability", Value: 1}, {Key: "full_name", Value: 1}},
			Options: options.Index().SetName("idx_profiles_dept_avail_name"),
		},
		{
			Keys:    bson.D{{Key: "facility", Value: 1}, {Key: "availability", Value: 1}},
			Options: options.Index().SetName("idx_profiles_facility_avail"),
		},
		// Skill-tag lookups
		{
			Keys:    bson.D{{Key: "skill_tags", Value: 1}},
			Options: options.Index().SetName("idx_profiles_skills"),
		},
	})
}
