// internal/app/system/perms/permissions.go

// Package perms defines the capability token vocabulary and the static
// role catalog. Tokens are opaque namespaced strings; holding one never
// implies another except through the role default table. There are no
// negative permissions: removing a grant is the only way to revoke.
package perms

import "strings"

// Permission is an atomic capability token, the smallest unit the access
// gateway evaluates.
type Permission string

// System administration tokens.
const (
	SystemAdmin          Permission = "system:admin"
	SystemManageSettings Permission = "system:manage_settings"
	SystemViewAuditLog   Permission = "system:view_audit_log"
)

// User management tokens.
const (
	UserView              Permission = "user:view"
	UserManage            Permission = "user:manage"
	UserManageRoles       Permission = "user:manage_roles"
	UserManagePermissions Permission = "user:manage_permissions"
)

// Team tokens.
const (
	TeamView   Permission = "team:view"
	TeamManage Permission = "team:manage"
)

// Group tokens.
const (
	GroupCreate        Permission = "group:create"
	GroupViewAll       Permission = "group:view_all"
	GroupManage        Permission = "group:manage"
	GroupManageMembers Permission = "group:manage_members"
	GroupDelete        Permission = "group:delete"
)

// Content tokens. Each named catalog category maps to one of these.
const (
	ContentViewHR        Permission = "content:view_hr"
	ContentViewIT        Permission = "content:view_it"
	ContentViewFinance   Permission = "content:view_finance"
	ContentViewMarketing Permission = "content:view_marketing"
	ContentViewAdmin     Permission = "content:view_admin"
	ContentManage        Permission = "content:manage"
)

// Analytics tokens.
const (
	AnalyticsView   Permission = "analytics:view"
	AnalyticsExport Permission = "analytics:export"
)

// registry is the closed set of defined tokens. All() and the owner
// default set are derived from it, so adding a constant here is the only
// step needed to introduce a token.
var registry = []Permission{
	SystemAdmin, SystemManageSettings, SystemViewAuditLog,
	UserView, UserManage, UserManageRoles, UserManagePermissions,
	TeamView, TeamManage,
	GroupCreate, GroupViewAll, GroupManage, GroupManageMembers, GroupDelete,
	ContentViewHR, ContentViewIT, ContentViewFinance, ContentViewMarketing,
	ContentViewAdmin, ContentManage,
	AnalyticsView, AnalyticsExport,
}

// All returns every defined permission token. The returned slice is a
// copy; callers may modify it freely.
func All() []Permission {
	out := make([]Permission, len(registry))
	copy(out, registry)
	return out
}

// IsDefined reports whether p is a known token.
func IsDefined(p Permission) bool {
	for _, known := range registry {
		if known == p {
			return true
		}
	}
	return false
}

// Namespace returns the category prefix of a token ("system", "user",
// "team", "group", "content", "analytics"), or "" for a malformed token.
func Namespace(p Permission) string {
	s := string(p)
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return ""
	}
	return s[:i]
}
