// internal/app/features/users/grants.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
)

type grantRequest struct {
	Permission string `json:"permission"`
	Resource   string `json:"resource"`
}

// HandleListGrants handles GET /users/{id}/grants: the custom grants
// attached directly to the user, not the role defaults.
func (h *Handler) HandleListGrants(w http.ResponseWriter, r *http.Request) {
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

	grants, err := h.Store.Permissions().ListUserGrants(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"grants": grants})
}

// HandleAddGrant handles POST /users/{id}/grants.
func (h *Handler) HandleAddGrant(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.UserManagePermissions, "")
	if !res.OK {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req grantRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	grant, err := h.Store.Permissions().GrantUser(ctx, models.UserPermission{
		UserID:     id,
		Permission: req.Permission,
		Resource:   req.Resource,
		GrantedBy:  res.Principal.UserID,
	})
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.PermissionGranted(ctx, r, res.Principal.UserID, id, req.Permission, req.Resource)
	shared.JSON(w, http.StatusCreated, grant)
}

// HandleRevokeGrant handles DELETE /users/{id}/grants.
func (h *Handler) HandleRevokeGrant(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.UserManagePermissions, "")
	if !res.OK {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req grantRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	revoked, err := h.Store.Permissions().RevokeUser(ctx, id, req.Permission, req.Resource)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if !revoked {
		shared.Error(w, http.StatusNotFound, "not found")
		return
	}

	h.AuditLog.PermissionRevoked(ctx, r, res.Principal.UserID, id, req.Permission, req.Resource)
	w.WriteHeader(http.StatusNoContent)
}

// HandleEffectivePermissions handles GET /users/{id}/permissions: the
// expanded capability set after role defaults, custom grants, and group
// grants. The answer reflects the stored state only; the owner override
// is an authentication-time property and never shows up here.
func (h *Handler) HandleEffectivePermissions(w http.ResponseWriter, r *http.Request) {
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

	grants, err := h.Gateway.EffectivePermissions(ctx, authz.Principal{UserID: id})
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	type entry struct {
		Permission string `json:"permission"`
		Resource   string `json:"resource,omitempty"`
	}
	out := make([]entry, 0, len(grants))
	for _, g := range grants {
		out = append(out, entry{Permission: string(g.Permission), Resource: g.Resource})
	}
	shared.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}
