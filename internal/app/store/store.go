// internal/app/store/store.go

// Package store defines the persistence contract the core depends on.
// Two implementations exist: mongodb (production) and memstore (tests and
// the memory backend for local development). The core never reaches a
// database client directly; every component receives a Store.
package store

import (
	"context"

	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store bundles the collection-level stores plus the snapshot read used
// by authorization. Implementations must guarantee that AccessSnapshot
// observes a consistent state: one authorize call never mixes a
// pre-update role with a post-update grant.
type Store interface {
	Users() UserStore
	Groups() GroupStore
	Memberships() MembershipStore
	Permissions() PermissionStore
	Catalog() CatalogStore
	Audit() AuditStore

	// AccessSnapshot loads everything one authorization evaluation needs
	// about a user in a single consistent read. Returns ErrNotFound if
	// the user does not exist.
	AccessSnapshot(ctx context.Context, userID primitive.ObjectID) (*AccessSnapshot, error)
}

// AccessSnapshot is the consistent view of a principal's stored state
// used to resolve effective permissions.
type AccessSnapshot struct {
	User              models.User
	ActiveMemberships []models.GroupMembership
	UserGrants        []models.UserPermission
	// GroupGrants holds the group-scoped grants for each group the user
	// is an active member of, keyed by group ID.
	GroupGrants map[primitive.ObjectID][]models.GroupPermission
}

// UserStore persists user accounts. Users are created on first sign-in
// and never hard-deleted; status transitions disable them instead.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// GetByEmail matches case-insensitively. Returns ErrNotFound when no
	// user holds the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	// RecordLogin bumps login_count and sets last_login_at.
	RecordLogin(ctx context.Context, id primitive.ObjectID) error
	SetRole(ctx context.Context, id primitive.ObjectID, role perms.Role) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	SetProfile(ctx context.Context, id primitive.ObjectID, fullName, avatarURL string) error
	List(ctx context.Context, f UserFilter) ([]models.User, error)
}

// UserFilter narrows List.
type UserFilter struct {
	Role   perms.Role // zero value means any role
	Status string     // zero value means any status
	Limit  int64
	Offset int64
}

// GroupStore persists groups. Create and Delete are transactional with
// their membership side effects.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	// Create inserts the group and the creator's founding membership in
	// one transaction: the membership is active immediately, labeled
	// "Creator", with invite/remove/edit all true. A group is never
	// observable without its founder.
	Create(ctx context.Context, g models.Group) (models.Group, error)
	Update(ctx context.Context, id primitive.ObjectID, patch GroupPatch) error
	// Delete hard-deletes the group and cascades its memberships and
	// group grants in the same transaction. Returns ErrNotFound when the
	// group does not exist.
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f GroupFilter) ([]models.Group, error)
}

// GroupPatch holds the mutable group fields. Nil pointers leave the
// stored value untouched.
type GroupPatch struct {
	Name        *string
	Description *string
	Visibility  *string
	MinRole     *string
	MaxMembers  **int // outer nil = no change, inner nil = clear the cap
	AutoApprove *bool
	Active      *bool
	ManagerID   **primitive.ObjectID
	Tags        *[]string
	Metadata    *map[string]string
}

// GroupFilter narrows List. Results are ordered newest-first.
type GroupFilter struct {
	Types        []string
	Visibilities []string
	// IncludeInactive widens the default active-only listing.
	IncludeInactive bool
	// Search matches a case-insensitive substring of name, description,
	// or any tag.
	Search string
	Limit  int64
	Offset int64
}

// AddMemberOptions configures a membership insert.
type AddMemberOptions struct {
	RoleLabel string
	CanInvite bool
	CanRemove bool
	CanEdit   bool
}

// MembershipStore persists group memberships. It performs no permission
// checks; authorization to add or remove members belongs to the access
// gateway.
type MembershipStore interface {
	Get(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMembership, error)
	// Add creates a membership, pending unless the group auto-approves.
	// The capacity check against the group's member cap is atomic with
	// the insert. A previously removed row is reactivated in place, so
	// (group, user) never maps to more than one row. An existing pending
	// or active row yields ErrConflict.
	Add(ctx context.Context, groupID, userID primitive.ObjectID, opts AddMemberOptions) (models.GroupMembership, error)
	// Approve transitions a pending membership to active, re-checking
	// capacity atomically.
	Approve(ctx context.Context, groupID, userID primitive.ObjectID) error
	// Remove transitions the row to removed, preserving history. Reports
	// whether a pending or active membership existed.
	Remove(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
	// ListByGroup returns the group's pending and active rows.
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error)
	// ListByUser returns the user's pending and active rows.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.GroupMembership, error)
	CountActive(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// PermissionStore persists custom grants.
type PermissionStore interface {
	GrantUser(ctx context.Context, grant models.UserPermission) (models.UserPermission, error)
	RevokeUser(ctx context.Context, userID primitive.ObjectID, permission, resource string) (bool, error)
	ListUserGrants(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error)

	GrantGroup(ctx context.Context, grant models.GroupPermission) (models.GroupPermission, error)
	RevokeGroup(ctx context.Context, groupID primitive.ObjectID, permission, resource string) (bool, error)
	ListGroupGrants(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupPermission, error)
}

// CatalogStore reads the content catalog. The catalog is owned by another
// system; this service never writes to it.
type CatalogStore interface {
	List(ctx context.Context) ([]models.Resource, error)
}

// AuditStore appends and queries audit events.
type AuditStore interface {
	Log(ctx context.Context, e AuditEvent) error
	Query(ctx context.Context, f AuditFilter) ([]AuditEvent, error)
}
