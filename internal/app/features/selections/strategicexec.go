// internal/app/features/selections/strategicexec.go
package selections

import (
	"context"
	"net/http"

	"github.com/dalemusser/selecthub/internal/app/selection/strategic"
	"github.com/dalemusser/selecthub/internal/app/system/authz"
	"github.com/dalemusser/selecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// HandleStrategic executes a strategic override: a level-5 executive
// stands up the transformation governance structure and activates it in
// one step.
// POST /api/selections/strategic
func (h *Handler) HandleStrategic(w http.ResponseWriter, r *http.Request) {
	actorID, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req strategicRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	projectID, err := parseID("project_id", req.ProjectID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sponsorID, err := parseID("sponsor_id", req.SponsorID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Objective == "" {
		httpjson.Error(w, http.StatusBadRequest, "objective is required")
		return
	}

	plan := make([]models.InvestmentPeriod, 0, len(req.InvestmentPlan))
	for _, p := range req.InvestmentPlan {
		plan = append(plan, models.InvestmentPeriod{Label: p.Label, Amount: p.Amount})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sel, err := h.Strategic.Execute(ctx, strategic.ExecuteRequest{
		ProjectID:        projectID,
		ExecutiveID:      actorID,
		Objective:        htmlsanitize.PlainText(req.Objective),
		Scope:            htmlsanitize.PlainText(req.Scope),
		SponsorID:        sponsorID,
		InvestmentPlan:   plan,
		ProjectedROI:     req.ProjectedROI,
		ReportingCadence: req.ReportingCadence,
		Filter:           req.Pool.filter(),
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusCreated, sel)
}
