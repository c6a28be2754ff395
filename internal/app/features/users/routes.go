// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/role", h.HandleSetRole)
		r.Put("/status", h.HandleSetStatus)
		r.Get("/permissions", h.HandleEffectivePermissions)

		r.Get("/grants", h.HandleListGrants)
		r.Post("/grants", h.HandleAddGrant)
		r.Delete("/grants", h.HandleRevokeGrant)
	})
	return r
}
