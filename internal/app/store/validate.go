// internal/app/store/validate.go
package store

import (
	"strings"

	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
)

// Both store implementations run the same validation so callers see the
// same ValidationErrors regardless of backend.

// ValidateNewUser checks the fields of a user about to be inserted.
func ValidateNewUser(u models.User) error {
	if strings.TrimSpace(u.Email) == "" {
		return Invalid("email", "must not be empty")
	}
	if !strings.Contains(u.Email, "@") {
		return Invalid("email", "must be an email address")
	}
	if _, ok := perms.ParseRole(u.Role); !ok {
		return Invalid("role", `must be "owner", "admin", "team_manager", or "member"`)
	}
	if !validUserStatus(u.Status) {
		return Invalid("status", `must be "active", "inactive", or "suspended"`)
	}
	return nil
}

func validUserStatus(s string) bool {
	switch s {
	case models.StatusActive, models.StatusInactive, models.StatusSuspended:
		return true
	}
	return false
}

// ValidateNewGroup checks the fields of a group about to be inserted.
func ValidateNewGroup(g models.Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name", "must not be empty")
	}
	switch g.Type {
	case models.GroupTypeDepartment, models.GroupTypeProject,
		models.GroupTypeFunctional, models.GroupTypeTemporary:
	default:
		return Invalid("type", `must be "department", "project", "functional", or "temporary"`)
	}
	if err := validateVisibility(g.Visibility); err != nil {
		return err
	}
	if g.MinRole != "" {
		if _, ok := perms.ParseRole(g.MinRole); !ok {
			return Invalid("min_role", "must be a defined role")
		}
	}
	if g.MaxMembers != nil && *g.MaxMembers < 1 {
		return Invalid("max_members", "must be at least 1")
	}
	if g.CreatedBy.IsZero() {
		return Invalid("created_by", "must reference the creating user")
	}
	return nil
}

func validateVisibility(v string) error {
	switch v {
	case models.VisibilityPublic, models.VisibilityRestricted, models.VisibilityPrivate:
		return nil
	}
	return Invalid("visibility", `must be "public", "restricted", or "private"`)
}

// ValidateGroupPatch checks the populated fields of a group update.
func ValidateGroupPatch(p GroupPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Invalid("name", "must not be empty")
	}
	if p.Visibility != nil {
		if err := validateVisibility(*p.Visibility); err != nil {
			return err
		}
	}
	if p.MinRole != nil && *p.MinRole != "" {
		if _, ok := perms.ParseRole(*p.MinRole); !ok {
			return Invalid("min_role", "must be a defined role")
		}
	}
	if p.MaxMembers != nil && *p.MaxMembers != nil && **p.MaxMembers < 1 {
		return Invalid("max_members", "must be at least 1")
	}
	return nil
}

// ValidateGrantPermission checks that a grant names a defined token.
func ValidateGrantPermission(permission string) error {
	if !perms.IsDefined(perms.Permission(permission)) {
		return Invalid("permission", "unknown permission token")
	}
	return nil
}
