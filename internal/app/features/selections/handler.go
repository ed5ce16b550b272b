// internal/app/features/selections/handler.go
package selections

import (
	"errors"
	"net/http"

	auditstore "github.com/dalemusser/selecthub/internal/app/store/auditledger"
	directorystore "github.com/dalemusser/selecthub/internal/app/store/directory"
	selectionstore "github.com/dalemusser/selecthub/internal/app/store/selections"
	"github.com/dalemusser/selecthub/internal/app/selection"
	"github.com/dalemusser/selecthub/internal/app/selection/basic"
	"github.com/dalemusser/selecthub/internal/app/selection/collaborative"
	"github.com/dalemusser/selecthub/internal/app/selection/emergency"
	"github.com/dalemusser/selecthub/internal/app/selection/lifecycle"
	"github.com/dalemusser/selecthub/internal/app/selection/optimize"
	"github.com/dalemusser/selecthub/internal/app/selection/strategic"
	"github.com/dalemusser/selecthub/internal/app/system/authority"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config carries the tuning knobs for the tier engines, sourced from app
// configuration.
type Config struct {
	Collaborative collaborative.Config
	Optimize      optimize.Config
	Emergency     emergency.Config
}

// Handler is the feature-level handler for team selections. It holds the
// stores and the five tier engines, built over the DB handle provided by
// WAFFLE DBDeps.
type Handler struct {
	Log    *zap.Logger
	Repo   *selectionstore.Store
	Ledger *auditstore.Store

	Basic         *basic.Engine
	Collaborative *collaborative.Engine
	Optimize      *optimize.Engine
	Emergency     *emergency.Engine
	Strategic     *strategic.Engine
	Lifecycle     *lifecycle.Engine
}

func NewHandler(db *mongo.Database, sched selection.Scheduler, logger *zap.Logger, cfg Config) *Handler {
	dir := directorystore.New(db)
	auth := authority.NewResolver(db)
	repo := selectionstore.New(db)
	ledger := auditstore.New(db, logger)
	sink := notify.NewLogSink(logger)

	return &Handler{
		Log:           logger,
		Repo:          repo,
		Ledger:        ledger,
		Basic:         basic.New(dir, auth, repo, sink, logger),
		Collaborative: collaborative.New(dir, auth, repo, ledger, sink, sched, logger, cfg.Collaborative),
		Optimize:      optimize.New(dir, auth, logger, cfg.Optimize),
		Emergency:     emergency.New(dir, auth, repo, ledger, sink, sched, logger, cfg.Emergency),
		Strategic:     strategic.New(dir, auth, repo, ledger, sink, logger),
		Lifecycle:     lifecycle.New(auth, repo, ledger, sink, sched, logger),
	}
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses.
// Unknown errors are logged and surfaced as a generic 500 so internals
// never leak to callers.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, selection.ErrPermissionDenied),
		errors.Is(err, selection.ErrNotStakeholder):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, selection.ErrSelectionNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, selection.ErrDuplicateVote),
		errors.Is(err, selection.ErrRoundClosed),
		errors.Is(err, selection.ErrInvalidTransition),
		errors.Is(err, selection.ErrResponseAlreadyStarted),
		errors.Is(err, selection.ErrVersionConflict):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, selection.ErrCandidateUnavailable),
		errors.Is(err, selection.ErrSizeExceeded),
		errors.Is(err, selection.ErrInsufficientCandidates),
		errors.Is(err, selection.ErrConstraintInfeasible),
		errors.Is(err, selection.ErrWrongTier):
		httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.Log.Error("selection operation failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
