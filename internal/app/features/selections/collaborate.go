// internal/app/features/selections/collaborate.go
package selections

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/selection/collaborative"
	"github.com/dalemusser/selecthub/internal/app/system/authz"
	"github.com/dalemusser/selecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// HandleCollaborate opens a collaborative selection: the candidate pool is
// built and frozen, stakeholders get their voting weights, and round 1
// starts.
// POST /api/selections/collaborate
func (h *Handler) HandleCollaborate(w http.ResponseWriter, r *http.Request) {
	actorID, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req collaborateRequest
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
	stakeholderIDs, err := parseIDs("stakeholder_ids", req.StakeholderIDs)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(stakeholderIDs) < 2 {
		httpjson.Error(w, http.StatusBadRequest, "at least two stakeholders are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sel, err := h.Collaborative.Initiate(ctx, collaborative.InitiateRequest{
		ProjectID:      projectID,
		InitiatorID:    actorID,
		OwnerID:        ownerID,
		SupervisorID:   supervisorID,
		StakeholderIDs: stakeholderIDs,
		Filter:         req.Scope.filter(),
		Criteria:       req.Criteria.model(),
		TargetTeamSize: req.TargetTeamSize,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusCreated, sel)
}

// HandleVote records one stakeholder's ballot for the current round.
// POST /api/selections/{id}/votes
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	actorID, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	selectionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad selection id")
		return
	}

	var req voteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Votes) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "votes is required")
		return
	}

	ballot := make([]models.CandidateVote, 0, len(req.Votes))
	for _, v := range req.Votes {
		candidateID, err := parseID("candidate_id", v.CandidateID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		ballot = append(ballot, models.CandidateVote{
			CandidateID: candidateID,
			Support:     v.Support,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sel, err := h.Collaborative.SubmitVote(ctx, selectionID, actorID, ballot, htmlsanitize.PlainText(req.Comment))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, sel)
}
