// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// HandleList handles GET /users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.UserView, "")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	win := paging.Parse(r)
	f := store.UserFilter{
		Status: query.Get(r, "status"),
		Limit:  win.Limit,
		Offset: win.Offset,
	}
	if raw := query.Get(r, "role"); raw != "" {
		role, ok := perms.ParseRole(raw)
		if !ok {
			shared.Error(w, http.StatusBadRequest, "unknown role")
			return
		}
		f.Role = role
	}

	list, err := h.Store.Users().List(ctx, f)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"users": list})
}

// HandleGet handles GET /users/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.UserView, "")
	if !res.OK {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Store.Users().GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, u)
}
