// internal/app/features/selections/audittrail.go
package selections

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
	"github.com/dalemusser/selecthub/internal/domain/models"
)

// HandleAuditList returns a selection's audit entries in sequence order.
// GET /api/selections/{id}/audit
func (h *Handler) HandleAuditList(w http.ResponseWriter, r *http.Request) {
	selectionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad selection id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.Ledger.BySelection(ctx, selectionID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if entries == nil {
		entries = []models.AuditEntry{}
	}
	httpjson.Write(w, http.StatusOK, entries)
}

// HandleAuditRecent returns the most recent audit entries across all
// selections, optionally narrowed to one actor.
// GET /api/selections/audit/recent?actor=<hex>&limit=<n>
func (h *Handler) HandleAuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			httpjson.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		entries []models.AuditEntry
		err     error
	)
	if actor := strings.TrimSpace(r.URL.Query().Get("actor")); actor != "" {
		actorID, perr := primitive.ObjectIDFromHex(actor)
		if perr != nil {
			httpjson.Error(w, http.StatusBadRequest, "bad actor id")
			return
		}
		entries, err = h.Ledger.ByActor(ctx, actorID, limit)
	} else {
		entries, err = h.Ledger.Recent(ctx, limit)
	}
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if entries == nil {
		entries = []models.AuditEntry{}
	}
	httpjson.Write(w, http.StatusOK, entries)
}

// HandleAuditVerify re-walks a selection's audit chain and reports whether
// every entry's checksum and sequence number still hold.
// GET /api/selections/{id}/audit/verify
func (h *Handler) HandleAuditVerify(w http.ResponseWriter, r *http.Request) {
	selectionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad selection id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Ledger.Verify(ctx, selectionID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, result)
}
