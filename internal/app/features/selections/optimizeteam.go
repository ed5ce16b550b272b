// internal/app/features/selections/optimizeteam.go
package selections

import (
	"context"
	"net/http"

	"github.com/dalemusser/selecthub/internal/app/selection/optimize"
	"github.com/dalemusser/selecthub/internal/app/system/authz"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// HandleOptimize runs the population-based search and returns the best
// composition plus alternatives. Advisory only: nothing is persisted, so
// the response is 200, not 201.
// POST /api/selections/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	actorID, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req optimizeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	projectID, err := parseID("project_id", req.ProjectID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// The search itself is CPU-bound and can outlast a medium DB window.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Optimize.SuggestOptimalTeam(ctx, optimize.SuggestRequest{
		ProjectID:   projectID,
		RequesterID: actorID,
		Filter:      req.Scope.filter(),
		Criteria:    req.Criteria.model(),
		Constraints: req.Constraints.model(),
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, result)
}
