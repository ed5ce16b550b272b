// internal/app/features/selections/lifecycleops.go
package selections

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/system/authz"
	"github.com/dalemusser/selecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// HandleAdvance moves a selection along the status lifecycle.
// POST /api/selections/{id}/advance
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
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

	var req advanceRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.To == "" {
		httpjson.Error(w, http.StatusBadRequest, "to is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sel, err := h.Lifecycle.Advance(ctx, selectionID, actorID, req.To, htmlsanitize.PlainText(req.Reason))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, sel)
}

// HandleCancel cancels a selection from any non-terminal status.
// POST /api/selections/{id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
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

	var req cancelRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sel, err := h.Lifecycle.Cancel(ctx, selectionID, actorID, htmlsanitize.PlainText(req.Reason))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, sel)
}
