// internal/app/features/users/manage.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetRole handles PUT /users/{id}/role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.UserManageRoles, "")
	if !res.OK {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req setRoleRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	role, ok := perms.ParseRole(req.Role)
	if !ok {
		shared.Error(w, http.StatusBadRequest, "unknown role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	before, err := h.Store.Users().GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if err := h.Store.Users().SetRole(ctx, id, role); err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.UserRoleChanged(ctx, r, res.Principal.UserID, id, before.Role, string(role))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetStatus handles PUT /users/{id}/status. Setting a user
// inactive is the disable path; accounts are never deleted.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.UserManage, "")
	if !res.OK {
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req setStatusRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	before, err := h.Store.Users().GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if err := h.Store.Users().SetStatus(ctx, id, req.Status); err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.UserStatusChanged(ctx, r, res.Principal.UserID, id, before.Status, req.Status)
	w.WriteHeader(http.StatusNoContent)
}
