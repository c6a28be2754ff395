// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.HandleQuery)
	return r
}
