// internal/app/system/perms/roles.go
package perms

import "strings"

// Role is a ranked account role. Roles are totally ordered by Level and
// immutable at runtime; which role a user holds is mutable.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleTeamManager Role = "team_manager"
	RoleMember      Role = "member"
)

// roleLevels orders the roles. Higher wins.
var roleLevels = map[Role]int{
	RoleOwner:       4,
	RoleAdmin:       3,
	RoleTeamManager: 2,
	RoleMember:      1,
}

// Level returns the numeric rank of a role, or 0 for an unknown role so
// that unknown always compares below member.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// ParseRole normalizes a stored role string. Unknown input comes back as
// ("", false).
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r, true
	}
	return "", false
}

// roleDefaults is the static role → default-capability table. The table
// is append-only: a token granted to a role here must never be removed in
// a later version, or a deploy silently strips privileges from every user
// holding that role. Owner is intentionally absent; its set is the full
// registry, computed in Defaults.
var roleDefaults = map[Role][]Permission{
	RoleAdmin: {
		SystemManageSettings, SystemViewAuditLog,
		UserView, UserManage, UserManageRoles, UserManagePermissions,
		TeamView, TeamManage,
		GroupCreate, GroupViewAll, GroupManage, GroupManageMembers, GroupDelete,
		ContentViewHR, ContentViewIT, ContentViewFinance, ContentViewMarketing,
		ContentViewAdmin, ContentManage,
		AnalyticsView, AnalyticsExport,
	},
	RoleTeamManager: {
		UserView,
		TeamView, TeamManage,
		GroupCreate, GroupManageMembers,
		ContentViewMarketing,
		AnalyticsView,
	},
	RoleMember: {
		TeamView,
		GroupCreate,
	},
}

// Defaults returns the default capability set for a role. Owner receives
// every defined token, so introducing a new token grants it to owners
// without touching this table. Unknown roles get nothing.
func Defaults(role Role) Set {
	if role == RoleOwner {
		return NewSet(All()...)
	}
	return NewSet(roleDefaults[role]...)
}

// Set is an unordered collection of permission tokens.
type Set map[Permission]struct{}

// NewSet builds a Set from the given tokens.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Add inserts p into the set.
func (s Set) Add(p Permission) {
	s[p] = struct{}{}
}

// Union returns a new set containing the members of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}
