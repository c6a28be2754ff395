// internal/app/store/memstore/memstore.go

// Package memstore is an in-memory implementation of the store contract.
// A single mutex serializes every operation, so the multi-step writes
// (group create with founding membership, capacity-checked membership
// inserts) are atomic, matching the contract the mongodb implementation
// provides with server-side transactions. It backs the
// test suite and the "memory" store backend for local development.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all state behind one mutex.
type Store struct {
	mu sync.Mutex

	users     map[primitive.ObjectID]models.User
	emailCI   map[string]primitive.ObjectID
	groups    map[primitive.ObjectID]models.Group
	groupName map[string]primitive.ObjectID

	// memberships is keyed by row ID; memberKey maps (group, user) to
	// the row ID so the one-row-per-pair invariant holds.
	memberships map[primitive.ObjectID]models.GroupMembership
	memberKey   map[pairKey]primitive.ObjectID

	userGrants  map[primitive.ObjectID][]models.UserPermission
	groupGrants map[primitive.ObjectID][]models.GroupPermission

	resources []models.Resource
	audit     []store.AuditEvent
}

type pairKey struct {
	group primitive.ObjectID
	user  primitive.ObjectID
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:       make(map[primitive.ObjectID]models.User),
		emailCI:     make(map[string]primitive.ObjectID),
		groups:      make(map[primitive.ObjectID]models.Group),
		groupName:   make(map[string]primitive.ObjectID),
		memberships: make(map[primitive.ObjectID]models.GroupMembership),
		memberKey:   make(map[pairKey]primitive.ObjectID),
		userGrants:  make(map[primitive.ObjectID][]models.UserPermission),
		groupGrants: make(map[primitive.ObjectID][]models.GroupPermission),
	}
}

func (s *Store) Users() store.UserStore             { return (*usersView)(s) }
func (s *Store) Groups() store.GroupStore           { return (*groupsView)(s) }
func (s *Store) Memberships() store.MembershipStore { return (*membershipsView)(s) }
func (s *Store) Permissions() store.PermissionStore { return (*permissionsView)(s) }
func (s *Store) Catalog() store.CatalogStore        { return (*catalogView)(s) }
func (s *Store) Audit() store.AuditStore            { return (*auditView)(s) }

// SeedResources replaces the content catalog. The catalog is read-only
// through the store contract; seeding is a test/bootstrap concern.
func (s *Store) SeedResources(resources []models.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append([]models.Resource(nil), resources...)
}

// AccessSnapshot implements store.Store. Everything is read under one
// lock, so the returned view is consistent.
func (s *Store) AccessSnapshot(ctx context.Context, userID primitive.ObjectID) (*store.AccessSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Unavailable("access snapshot", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}

	snap := &store.AccessSnapshot{
		User:        u,
		GroupGrants: make(map[primitive.ObjectID][]models.GroupPermission),
	}
	for _, m := range s.memberships {
		if m.UserID == userID && m.Status == models.MembershipActive {
			snap.ActiveMemberships = append(snap.ActiveMemberships, m)
			if grants := s.groupGrants[m.GroupID]; len(grants) > 0 {
				snap.GroupGrants[m.GroupID] = append([]models.GroupPermission(nil), grants...)
			}
		}
	}
	snap.UserGrants = append([]models.UserPermission(nil), s.userGrants[userID]...)
	return snap, nil
}

// sortNewestFirst orders by creation time descending, breaking ties by
// ID so the order is stable.
func sortGroupsNewestFirst(groups []models.Group) {
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].CreatedAt.After(groups[j].CreatedAt)
		}
		return groups[i].ID.Hex() > groups[j].ID.Hex()
	})
}

// page applies limit/offset to an already-ordered slice.
func page[T any](rows []T, limit, offset int64) []T {
	if offset > 0 {
		if offset >= int64(len(rows)) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < int64(len(rows)) {
		rows = rows[:limit]
	}
	return rows
}
