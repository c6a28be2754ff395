// internal/app/features/catalog/handler.go

// Package catalog serves the content catalog, filtered to what the
// caller's effective permissions allow them to see. The catalog itself
// is owned by another system; this surface is read-only.
package catalog

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/policy/visibility"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Store   store.Store
	Gateway *authz.Gateway
}

func NewHandler(st store.Store, gw *authz.Gateway, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: st, Gateway: gw}
}

// HandleList handles GET /catalog.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.Catalog().List(ctx)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	v, err := h.Gateway.ViewerFor(ctx, res.Principal)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	shared.JSON(w, http.StatusOK, map[string]any{
		"resources": visibility.FilterContent(v, list),
	})
}
