// internal/app/policy/visibility/visibility.go
//
// Package visibility decides which groups and content resources a
// principal can see. The rules are pure functions of a Viewer built
// from one consistent store snapshot; nothing here touches the store.
package visibility

import (
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Viewer is the resolved view-side of a principal: account state,
// active group memberships, and the unscoped permissions in effect.
type Viewer struct {
	User models.User

	// Owner is the owner-email override, resolved at authentication
	// time. An owner sees everything an active account can see.
	Owner bool

	// ActiveGroups holds the IDs of groups the viewer is an active
	// member of. Pending and removed memberships grant no visibility.
	ActiveGroups map[primitive.ObjectID]bool

	// Perms is the viewer's effective unscoped permission set: role
	// defaults plus global custom and group grants.
	Perms perms.Set
}

// Member reports whether the viewer is an active member of the group.
func (v Viewer) Member(groupID primitive.ObjectID) bool {
	return v.ActiveGroups[groupID]
}

// CanViewGroup applies the visibility tiers:
//
//	public:     any active user
//	restricted: active members, or anyone holding group:view_all
//	private:    active members with role at or above the group's
//	            minimum, or owner/admin
func CanViewGroup(v Viewer, g models.Group) bool {
	if !v.User.IsActive() {
		return false
	}
	if v.Owner {
		return true
	}
	switch g.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityRestricted:
		return v.Member(g.ID) || v.Perms.Has(perms.GroupViewAll)
	case models.VisibilityPrivate:
		role, ok := perms.ParseRole(v.User.Role)
		if !ok {
			return false
		}
		if role.AtLeast(perms.RoleAdmin) {
			return true
		}
		min, ok := perms.ParseRole(g.MinRole)
		if !ok {
			min = perms.RoleMember
		}
		return v.Member(g.ID) && role.AtLeast(min)
	}
	// Unknown tier: treat like private with no membership.
	return false
}

// categoryPermission maps a named content category to the permission
// required to view it. Categories absent from this table are public.
var categoryPermission = map[string]perms.Permission{
	models.CategoryHR:        perms.ContentViewHR,
	models.CategoryIT:        perms.ContentViewIT,
	models.CategoryFinance:   perms.ContentViewFinance,
	models.CategoryMarketing: perms.ContentViewMarketing,
	models.CategoryAdmin:     perms.ContentViewAdmin,
}

// CanViewContent reports whether the viewer can see one catalog
// resource. Named categories require the mapped permission; public and
// unrecognized categories are visible to everyone; the catalog grows
// categories before this service learns them.
func CanViewContent(v Viewer, r models.Resource) bool {
	required, named := categoryPermission[r.Category]
	if !named {
		return true
	}
	if !v.User.IsActive() {
		return false
	}
	return v.Owner || v.Perms.Has(required)
}

// FilterGroups returns the groups the viewer can see, preserving input
// order. The input is never mutated, and filtering an already-filtered
// list returns it unchanged.
func FilterGroups(v Viewer, groups []models.Group) []models.Group {
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if CanViewGroup(v, g) {
			out = append(out, g)
		}
	}
	return out
}

// FilterContent returns the catalog resources the viewer can see,
// preserving input order without mutating the input.
func FilterContent(v Viewer, resources []models.Resource) []models.Resource {
	out := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if CanViewContent(v, r) {
			out = append(out, r)
		}
	}
	return out
}
