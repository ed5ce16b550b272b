// internal/app/features/selections/emergencyexec.go
package selections

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/selection/emergency"
	"github.com/dalemusser/selecthub/internal/app/system/authz"
	"github.com/dalemusser/selecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// HandleEmergency executes an emergency override: the team is assembled
// from the emergency type's response template and activated in one step,
// with the override recorded in the audit ledger.
// POST /api/selections/emergency
func (h *Handler) HandleEmergency(w http.ResponseWriter, r *http.Request) {
	actorID, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req emergencyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	projectID, err := parseID("project_id", req.ProjectID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EmergencyType == "" {
		httpjson.Error(w, http.StatusBadRequest, "emergency_type is required")
		return
	}
	if req.Description == "" {
		httpjson.Error(w, http.StatusBadRequest, "description is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sel, err := h.Emergency.Execute(ctx, emergency.ExecuteRequest{
		ProjectID:         projectID,
		ExecutiveID:       actorID,
		EmergencyType:     req.EmergencyType,
		UrgencyLevel:      req.UrgencyLevel,
		Description:       htmlsanitize.PlainText(req.Description),
		ImpactAssessment:  htmlsanitize.PlainText(req.ImpactAssessment),
		TimeWindowMinutes: req.TimeWindowMinutes,
		Filter:            req.Scope.filter(),
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusCreated, sel)
}

// HandleResponseStarted marks the emergency response as underway, which
// cancels the pending auto-escalation.
// POST /api/selections/{id}/response_started
func (h *Handler) HandleResponseStarted(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sel, err := h.Emergency.MarkResponseStarted(ctx, selectionID, actorID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, sel)
}
