// internal/app/features/selections/view.go
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

const defaultListLimit = 50

// HandleGet returns one selection by id.
// GET /api/selections/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	selectionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad selection id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sel, err := h.Repo.Get(ctx, selectionID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	httpjson.Write(w, http.StatusOK, sel)
}

// HandleList lists selections filtered by project or status. Exactly one
// of the two query parameters is required; listing the whole collection is
// not a supported operation.
// GET /api/selections?project=<hex> or ?status=<status>
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	project := strings.TrimSpace(r.URL.Query().Get("project"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))

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
		sels []models.MemberSelection
		err  error
	)
	switch {
	case project != "" && status != "":
		httpjson.Error(w, http.StatusBadRequest, "use either project or status, not both")
		return
	case project != "":
		projectID, perr := primitive.ObjectIDFromHex(project)
		if perr != nil {
			httpjson.Error(w, http.StatusBadRequest, "bad project id")
			return
		}
		sels, err = h.Repo.ListByProject(ctx, projectID, limit)
	case status != "":
		sels, err = h.Repo.ListByStatus(ctx, status, limit)
	default:
		httpjson.Error(w, http.StatusBadRequest, "project or status query parameter is required")
		return
	}
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if sels == nil {
		sels = []models.MemberSelection{}
	}
	httpjson.Write(w, http.StatusOK, sels)
}
