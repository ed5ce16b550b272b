// internal/app/features/selections/create.go
package selections

import (
	"context"
	"net/http"

	"github.com/dalemusser/selecthub/internal/app/selection/basic"
	"github.com/dalemusser/selecthub/internal/app/system/authz"
	"github.com/dalemusser/selecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// HandleCreate performs a direct (single-approver) selection.
// POST /api/selections
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	projectID, err := parseID("project_id", req.ProjectID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID, err := parseID("owner_id", req.OwnerID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	supervisorID, err := parseID("supervisor_id", req.SupervisorID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	candidateIDs, err := parseIDs("candidate_ids", req.CandidateIDs)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(candidateIDs) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "candidate_ids is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sel, err := h.Basic.Select(ctx, basic.SelectRequest{
		ProjectID:    projectID,
		SelectorID:   actorID,
		OwnerID:      ownerID,
		SupervisorID: supervisorID,
		CandidateIDs: candidateIDs,
		Criteria:     req.Criteria.model(),
		Reason:       htmlsanitize.PlainText(req.Reason),
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusCreated, sel)
}
