// internal/app/selection/retry.go
package selection

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dalemusser/selecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mutate reloads the selection, applies mutate, and saves it, retrying the
// whole cycle with backoff while the save loses optimistic-concurrency
// races. This serializes writers per selection id: each retry observes the
// latest committed state, so exactly one concurrent vote submission sees
// "all stakeholders voted" and resolves the round.
//
// Errors other than ErrVersionConflict abort immediately and are returned
// to the caller unwrapped.
func Mutate(ctx context.Context, repo Repository, id primitive.ObjectID, mutate func(*models.MemberSelection) error) (*models.MemberSelection, error) {
	var sel *models.MemberSelection

	op := func() error {
		loaded, err := repo.Get(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := mutate(loaded); err != nil {
			return backoff.Permanent(err)
		}
		if err := repo.Save(ctx, loaded); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		sel = loaded
		return nil
	}

	bo := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(10*time.Millisecond),
		backoff.WithMaxElapsedTime(5*time.Second),
	), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return sel, nil
}
