// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/policy/visibility"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleList handles GET /groups. Results are filtered to what the
// caller may see, so the page can come back smaller than the limit.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	win := paging.Parse(r)
	f := store.GroupFilter{
		Search: query.Get(r, "search"),
		Limit:  win.Limit,
		Offset: win.Offset,
	}
	q := r.URL.Query()
	f.Types = append(f.Types, q["type"]...)
	f.Visibilities = append(f.Visibilities, q["visibility"]...)

	if query.Get(r, "include_inactive") == "true" {
		ok, err := h.Gateway.CanAccessAdminPanel(ctx, res.Principal)
		if err != nil {
			shared.StoreError(w, h.Log, err)
			return
		}
		f.IncludeInactive = ok
	}

	list, err := h.Store.Groups().List(ctx, f)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	v, err := h.Gateway.ViewerFor(ctx, res.Principal)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	visible := visibility.FilterGroups(v, list)

	out := make([]groupResponse, 0, len(visible))
	for _, g := range visible {
		out = append(out, groupResponse{Group: g})
	}
	shared.JSON(w, http.StatusOK, map[string]any{"groups": out})
}

// HandleGet handles GET /groups/{id}. A group the caller may not view
// answers 404 so the listing and the detail endpoint agree on what
// exists.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Store.Groups().GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	canView, err := h.Gateway.CanViewGroup(ctx, res.Principal, *g)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if !canView {
		shared.Error(w, http.StatusNotFound, "not found")
		return
	}

	count, err := h.Store.Memberships().CountActive(ctx, id)
	if err != nil {
		h.Log.Warn("member count unavailable", zap.Error(err), zap.String("group_id", id.Hex()))
	}
	shared.JSON(w, http.StatusOK, groupResponse{Group: *g, MemberCount: count})
}
