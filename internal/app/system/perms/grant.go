// internal/app/system/perms/grant.go
package perms

// GrantKind distinguishes global grants from resource-scoped ones. The
// tag keeps the matching logic exhaustive: an unscoped grant can never be
// accidentally read as narrower than intended.
type GrantKind int

const (
	// GrantGlobal matches a check against any resource, including none.
	GrantGlobal GrantKind = iota
	// GrantScoped matches only checks against exactly its resource.
	GrantScoped
)

// Grant is one granted capability, either global or scoped to a single
// named resource. Build values with Global or Scoped rather than by
// struct literal so Kind and Resource stay consistent.
type Grant struct {
	Permission Permission
	Kind       GrantKind
	Resource   string
}

// Global returns a grant that matches any resource check.
func Global(p Permission) Grant {
	return Grant{Permission: p, Kind: GrantGlobal}
}

// Scoped returns a grant limited to checks against resource. An empty
// resource degrades to a global grant.
func Scoped(p Permission, resource string) Grant {
	if resource == "" {
		return Global(p)
	}
	return Grant{Permission: p, Kind: GrantScoped, Resource: resource}
}

// Matches reports whether this grant satisfies a check for permission p
// against the given resource ("" means the check is not resource-bound).
func (g Grant) Matches(p Permission, resource string) bool {
	if g.Permission != p {
		return false
	}
	switch g.Kind {
	case GrantGlobal:
		return true
	case GrantScoped:
		return g.Resource == resource
	}
	return false
}
