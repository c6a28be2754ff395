// internal/app/system/authz/gates.go
package authz

import (
	"context"
	"errors"

	"github.com/dalemusser/accesshub/internal/app/policy/visibility"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Convenience wrappers over Authorize for the checks handlers make
// constantly. All of them load one snapshot and answer from it.

// CanAccessAdminPanel reports whether the principal may enter the admin
// surface: owner override, admin-or-better role, or system:admin.
func (gw *Gateway) CanAccessAdminPanel(ctx context.Context, p Principal) (bool, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	if !snap.User.IsActive() {
		return false, nil
	}
	if p.OwnerOverride {
		return true, nil
	}
	if role, ok := perms.ParseRole(snap.User.Role); ok && role.AtLeast(perms.RoleAdmin) {
		return true, nil
	}
	return evaluate(snap, p, perms.SystemAdmin, "").Allow, nil
}

// CanViewGroup answers the visibility question for one group.
func (gw *Gateway) CanViewGroup(ctx context.Context, p Principal, g models.Group) (bool, error) {
	v, err := gw.ViewerFor(ctx, p)
	if err != nil {
		return false, err
	}
	return visibility.CanViewGroup(v, g), nil
}

// CanManageGroup reports whether the principal may edit or delete the
// group: owner/admin override, the group:manage permission, the group's
// designated manager, or a membership carrying the edit capability.
func (gw *Gateway) CanManageGroup(ctx context.Context, p Principal, groupID primitive.ObjectID) (bool, error) {
	return gw.groupCapability(ctx, p, groupID, perms.GroupManage, func(m models.GroupMembership) bool {
		return m.CanEdit
	})
}

// CanInviteToGroup reports whether the principal may add members:
// owner/admin override, group:manage_members, the group's manager, or a
// membership carrying the invite capability.
func (gw *Gateway) CanInviteToGroup(ctx context.Context, p Principal, groupID primitive.ObjectID) (bool, error) {
	return gw.groupCapability(ctx, p, groupID, perms.GroupManageMembers, func(m models.GroupMembership) bool {
		return m.CanInvite
	})
}

// CanRemoveFromGroup is CanInviteToGroup's counterpart for removals.
func (gw *Gateway) CanRemoveFromGroup(ctx context.Context, p Principal, groupID primitive.ObjectID) (bool, error) {
	return gw.groupCapability(ctx, p, groupID, perms.GroupManageMembers, func(m models.GroupMembership) bool {
		return m.CanRemove
	})
}

func (gw *Gateway) groupCapability(ctx context.Context, p Principal, groupID primitive.ObjectID, permission perms.Permission, flag func(models.GroupMembership) bool) (bool, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	if !snap.User.IsActive() {
		return false, nil
	}
	if p.OwnerOverride {
		return true, nil
	}
	if role, ok := perms.ParseRole(snap.User.Role); ok && role.AtLeast(perms.RoleAdmin) {
		return true, nil
	}
	if evaluate(snap, p, permission, "").Allow {
		return true, nil
	}

	g, err := gw.store.Groups().GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if g.ManagerID != nil && *g.ManagerID == p.UserID {
		return true, nil
	}
	for _, m := range snap.ActiveMemberships {
		if m.GroupID == groupID && flag(m) {
			return true, nil
		}
	}
	return false, nil
}
