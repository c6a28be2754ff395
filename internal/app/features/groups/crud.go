// internal/app/features/groups/crud.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.GroupCreate, "")
	if !res.OK {
		return
	}

	var req createGroupRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g := models.Group{
		Name:        htmlsanitize.Strip(req.Name),
		Description: htmlsanitize.Description(req.Description),
		Type:        req.Type,
		Visibility:  req.Visibility,
		MinRole:     req.MinRole,
		MaxMembers:  req.MaxMembers,
		AutoApprove: req.AutoApprove,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
		CreatedBy:   res.Principal.UserID,
	}
	created, err := h.Store.Groups().Create(ctx, g)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.GroupCreated(ctx, r, res.Principal.UserID, created.ID, created.Name)
	shared.JSON(w, http.StatusCreated, groupResponse{Group: created, MemberCount: 1})
}

// HandleUpdate handles PUT /groups/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	canManage, err := h.Gateway.CanManageGroup(ctx, res.Principal, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if !canManage {
		shared.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateGroupRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	patch := store.GroupPatch{
		Visibility:  req.Visibility,
		MinRole:     req.MinRole,
		AutoApprove: req.AutoApprove,
		Active:      req.Active,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	}
	if req.Name != nil {
		name := htmlsanitize.Strip(*req.Name)
		patch.Name = &name
	}
	if req.Description != nil {
		desc := htmlsanitize.Description(*req.Description)
		patch.Description = &desc
	}
	switch {
	case req.ClearMaxMembers:
		var cleared *int
		patch.MaxMembers = &cleared
	case req.MaxMembers != nil:
		patch.MaxMembers = &req.MaxMembers
	}
	switch {
	case req.ClearManager:
		var cleared *primitive.ObjectID
		patch.ManagerID = &cleared
	case req.ManagerID != nil:
		mid, err := primitive.ObjectIDFromHex(*req.ManagerID)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "malformed manager_id")
			return
		}
		m := &mid
		patch.ManagerID = &m
	}

	if err := h.Store.Groups().Update(ctx, id, patch); err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.GroupUpdated(ctx, r, res.Principal.UserID, id)

	g, err := h.Store.Groups().GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, groupResponse{Group: *g})
}

// HandleDelete handles DELETE /groups/{id}. Deletion is reserved for
// the group:delete permission; everyone else soft-disables via update.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.GroupDelete, "")
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
	if err := h.Store.Groups().Delete(ctx, id); err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.GroupDeleted(ctx, r, res.Principal.UserID, id, g.Name)
	w.WriteHeader(http.StatusNoContent)
}
