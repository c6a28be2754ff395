// internal/app/features/groups/grants.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Group grants widen what every active member of the group can do, so
// managing them is an admin-surface operation, not a group-manager one.

// HandleListGrants handles GET /groups/{id}/grants.
func (h *Handler) HandleListGrants(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminPanel(w, r, h.Gateway)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	grants, err := h.Store.Permissions().ListGroupGrants(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"grants": grants})
}

// HandleAddGrant handles POST /groups/{id}/grants.
func (h *Handler) HandleAddGrant(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminPanel(w, r, h.Gateway)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req grantRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	if !perms.IsDefined(perms.Permission(req.Permission)) {
		shared.Error(w, http.StatusBadRequest, "unknown permission")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	grant, err := h.Store.Permissions().GrantGroup(ctx, models.GroupPermission{
		GroupID:    id,
		Permission: req.Permission,
		Resource:   req.Resource,
		GrantedBy:  res.Principal.UserID,
	})
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.GroupGrantAdded(ctx, r, res.Principal.UserID, id, req.Permission, req.Resource)
	shared.JSON(w, http.StatusCreated, grant)
}

// HandleRevokeGrant handles DELETE /groups/{id}/grants.
func (h *Handler) HandleRevokeGrant(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminPanel(w, r, h.Gateway)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req grantRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	revoked, err := h.Store.Permissions().RevokeGroup(ctx, id, req.Permission, req.Resource)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if !revoked {
		shared.Error(w, http.StatusNotFound, "not found")
		return
	}

	h.AuditLog.GroupGrantRevoked(ctx, r, res.Principal.UserID, id, req.Permission, req.Resource)
	w.WriteHeader(http.StatusNoContent)
}
