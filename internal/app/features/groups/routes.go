// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)

		r.Get("/members", h.HandleListMembers)
		r.Post("/members", h.HandleAddMember)
		r.Post("/members/{userID}/approve", h.HandleApproveMember)
		r.Delete("/members/{userID}", h.HandleRemoveMember)

		r.Get("/grants", h.HandleListGrants)
		r.Post("/grants", h.HandleAddGrant)
		r.Delete("/grants", h.HandleRevokeGrant)
	})
	return r
}
