// internal/app/features/groups/members.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleListMembers handles GET /groups/{id}/members. The listing is
// founder-first in creation order, pending rows included.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.Store.Memberships().ListByGroup(ctx, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	out := make([]membershipResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMembershipResponse(m))
	}
	shared.JSON(w, http.StatusOK, map[string]any{"members": out})
}

// HandleAddMember handles POST /groups/{id}/members. With no user_id in
// the body it is a join request for the caller; naming another user is
// an invite and requires the invite capability.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req addMemberRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target := res.Principal.UserID
	opts := store.AddMemberOptions{RoleLabel: req.RoleLabel}
	if req.UserID != "" && req.UserID != res.Principal.UserID.Hex() {
		uid, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "malformed user_id")
			return
		}
		canInvite, err := h.Gateway.CanInviteToGroup(ctx, res.Principal, id)
		if err != nil {
			shared.StoreError(w, h.Log, err)
			return
		}
		if !canInvite {
			shared.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		target = uid
		// Capability flags on the new row are only honored from an
		// inviter; a self-join never grants them.
		opts.CanInvite = req.CanInvite
		opts.CanRemove = req.CanRemove
		opts.CanEdit = req.CanEdit
	} else {
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
	}

	m, err := h.Store.Memberships().Add(ctx, id, target, opts)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.MemberAdded(ctx, r, res.Principal.UserID, id, target, m.Status)
	shared.JSON(w, http.StatusCreated, toMembershipResponse(m))
}

// HandleApproveMember handles POST /groups/{id}/members/{userID}/approve.
func (h *Handler) HandleApproveMember(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	uid, ok := pathID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	canInvite, err := h.Gateway.CanInviteToGroup(ctx, res.Principal, id)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if !canInvite {
		shared.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.Store.Memberships().Approve(ctx, id, uid); err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	h.AuditLog.MemberApproved(ctx, r, res.Principal.UserID, id, uid)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveMember handles DELETE /groups/{id}/members/{userID}.
// Members may always remove themselves; removing anyone else requires
// the remove capability.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	uid, ok := pathID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if uid != res.Principal.UserID {
		canRemove, err := h.Gateway.CanRemoveFromGroup(ctx, res.Principal, id)
		if err != nil {
			shared.StoreError(w, h.Log, err)
			return
		}
		if !canRemove {
			shared.Error(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	removed, err := h.Store.Memberships().Remove(ctx, id, uid)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	if !removed {
		shared.Error(w, http.StatusNotFound, "not found")
		return
	}

	h.AuditLog.MemberRemoved(ctx, r, res.Principal.UserID, id, uid)
	w.WriteHeader(http.StatusNoContent)
}
