// internal/app/system/authz/authz.go
//
// Package authz is the single entry point for authorization decisions.
// Every decision reads one consistent store snapshot, applies the
// precedence rules, and returns a Decision. Denial is a normal result,
// not an error; errors mean the snapshot could not be loaded.
package authz

import (
	"context"

	"github.com/dalemusser/accesshub/internal/app/policy/visibility"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Principal is the resolved identity behind a request. OwnerOverride is
// decided at authentication time by matching the session email against
// the configured owner addresses; it is never persisted on the user.
type Principal struct {
	UserID        primitive.ObjectID
	Email         string
	OwnerOverride bool
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Allow  bool
	Reason string
}

// Decision reasons, in precedence order.
const (
	ReasonInactiveAccount = "inactive_account"
	ReasonGodMode         = "god_mode"
	ReasonCustomGrant     = "custom_grant"
	ReasonRoleDefault     = "role_default"
	ReasonGroupGrant      = "group_grant"
	ReasonNoGrant         = "no_grant"
)

func allow(reason string) Decision { return Decision{Allow: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allow: false, Reason: reason} }

// Gateway evaluates authorization against the store.
type Gateway struct {
	store store.Store
	log   *zap.Logger
}

// New builds a Gateway.
func New(st store.Store, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{store: st, log: log}
}

// Authorize checks one permission for the principal. Precedence, first
// match wins: inactive account denies everything; the owner override
// allows everything; then custom grants, role defaults, and group
// grants, in that order; anything left is a denial.
func (gw *Gateway) Authorize(ctx context.Context, p Principal, permission perms.Permission, resource string) (Decision, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return Decision{}, err
	}
	return evaluate(snap, p, permission, resource), nil
}

// evaluate is the pure decision core; everything it needs is in the
// snapshot and the principal.
func evaluate(snap *store.AccessSnapshot, p Principal, permission perms.Permission, resource string) Decision {
	if !snap.User.IsActive() {
		return deny(ReasonInactiveAccount)
	}
	if p.OwnerOverride {
		return allow(ReasonGodMode)
	}

	for _, g := range snap.UserGrants {
		if asGrant(g.Permission, g.Resource).Matches(permission, resource) {
			return allow(ReasonCustomGrant)
		}
	}

	role, ok := perms.ParseRole(snap.User.Role)
	if ok && perms.Defaults(role).Has(permission) {
		return allow(ReasonRoleDefault)
	}

	for _, grants := range snap.GroupGrants {
		for _, g := range grants {
			if asGrant(g.Permission, g.Resource).Matches(permission, resource) {
				return allow(ReasonGroupGrant)
			}
		}
	}
	return deny(ReasonNoGrant)
}

// asGrant lifts a stored (permission, resource) pair into the tagged
// grant form so the matching logic stays exhaustive.
func asGrant(permission, resource string) perms.Grant {
	if resource == "" {
		return perms.Global(perms.Permission(permission))
	}
	return perms.Scoped(perms.Permission(permission), resource)
}

// HasPermission is Authorize reduced to its boolean.
func (gw *Gateway) HasPermission(ctx context.Context, p Principal, permission perms.Permission, resource string) (bool, error) {
	d, err := gw.Authorize(ctx, p, permission, resource)
	if err != nil {
		return false, err
	}
	return d.Allow, nil
}

// HasAny reports whether any of the permissions is held. The snapshot
// is loaded once, so the answer is consistent across the candidates.
func (gw *Gateway) HasAny(ctx context.Context, p Principal, permissions ...perms.Permission) (bool, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	for _, perm := range permissions {
		if evaluate(snap, p, perm, "").Allow {
			return true, nil
		}
	}
	return false, nil
}

// HasAll reports whether every one of the permissions is held, judged
// against a single snapshot.
func (gw *Gateway) HasAll(ctx context.Context, p Principal, permissions ...perms.Permission) (bool, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	for _, perm := range permissions {
		if !evaluate(snap, p, perm, "").Allow {
			return false, nil
		}
	}
	return true, nil
}

// EffectivePermissions returns the principal's full grant set: role
// defaults as global grants, plus custom grants, plus group grants from
// active memberships. Inactive accounts hold nothing. Adding a grant
// never removes anything already present; a demotion changes only the
// role-derived subset.
func (gw *Gateway) EffectivePermissions(ctx context.Context, p Principal) ([]perms.Grant, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !snap.User.IsActive() {
		return nil, nil
	}

	var out []perms.Grant
	seen := map[perms.Grant]bool{}
	add := func(g perms.Grant) {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}

	role, ok := perms.ParseRole(snap.User.Role)
	if p.OwnerOverride {
		role, ok = perms.RoleOwner, true
	}
	if ok {
		defaults := perms.Defaults(role)
		for _, perm := range perms.All() {
			if defaults.Has(perm) {
				add(perms.Global(perm))
			}
		}
	}
	for _, g := range snap.UserGrants {
		add(asGrant(g.Permission, g.Resource))
	}
	for _, grants := range snap.GroupGrants {
		for _, g := range grants {
			add(asGrant(g.Permission, g.Resource))
		}
	}
	return out, nil
}

// ViewerFor builds the visibility policy's input from one snapshot:
// the account, its active group IDs, and the unscoped permissions in
// effect.
func (gw *Gateway) ViewerFor(ctx context.Context, p Principal) (visibility.Viewer, error) {
	snap, err := gw.store.AccessSnapshot(ctx, p.UserID)
	if err != nil {
		return visibility.Viewer{}, err
	}

	v := visibility.Viewer{
		User:         snap.User,
		Owner:        p.OwnerOverride,
		ActiveGroups: make(map[primitive.ObjectID]bool, len(snap.ActiveMemberships)),
		Perms:        perms.Set{},
	}
	for _, m := range snap.ActiveMemberships {
		v.ActiveGroups[m.GroupID] = true
	}
	if role, ok := perms.ParseRole(snap.User.Role); ok {
		v.Perms = v.Perms.Union(perms.Defaults(role))
	}
	for _, g := range snap.UserGrants {
		if g.Resource == "" {
			v.Perms.Add(perms.Permission(g.Permission))
		}
	}
	for _, grants := range snap.GroupGrants {
		for _, g := range grants {
			if g.Resource == "" {
				v.Perms.Add(perms.Permission(g.Permission))
			}
		}
	}
	return v, nil
}
