// internal/app/features/selections/routes.go
package selections

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/selecthub/internal/app/system/auth"
)

// Routes mounts the selections API under the path where the caller mounts
// it. Typically: r.Mount("/api/selections", selections.Routes(handler, sm))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// Tier entry points
		pr.Post("/", h.HandleCreate)
		pr.Post("/collaborate", h.HandleCollaborate)
		pr.Post("/optimize", h.HandleOptimize)
		pr.Post("/emergency", h.HandleEmergency)
		pr.Post("/strategic", h.HandleStrategic)

		// Per-selection operations
		pr.Get("/", h.HandleList)
		pr.Get("/{id}", h.HandleGet)
		pr.Post("/{id}/votes", h.HandleVote)
		pr.Post("/{id}/response_started", h.HandleResponseStarted)
		pr.Post("/{id}/advance", h.HandleAdvance)
		pr.Post("/{id}/cancel", h.HandleCancel)

		// Audit trail
		pr.Get("/audit/recent", h.HandleAuditRecent)
		pr.Get("/{id}/audit", h.HandleAuditList)
		pr.Get("/{id}/audit/verify", h.HandleAuditVerify)
	})

	return r
}
