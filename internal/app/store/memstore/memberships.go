// internal/app/store/memstore/memberships.go
package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type membershipsView Store

func (v *membershipsView) Get(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMembership, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	rowID, ok := s.memberKey[pairKey{groupID, userID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	m := s.memberships[rowID]
	return &m, nil
}

// Add creates or reactivates the (group, user) row. The capacity check
// and the write happen under the same lock hold, so concurrent joins
// cannot push an active count past the group's cap.
func (v *membershipsView) Add(ctx context.Context, groupID, userID primitive.ObjectID, opts store.AddMemberOptions) (models.GroupMembership, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return models.GroupMembership{}, store.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return models.GroupMembership{}, store.ErrNotFound
	}

	if g.MaxMembers != nil && s.countActiveLocked(groupID) >= int64(*g.MaxMembers) {
		return models.GroupMembership{}, store.ErrCapacityExceeded
	}

	now := time.Now().UTC()
	status := models.MembershipPending
	var joinedAt *time.Time
	if g.AutoApprove {
		status = models.MembershipActive
		joinedAt = &now
	}

	key := pairKey{groupID, userID}
	if rowID, exists := s.memberKey[key]; exists {
		m := s.memberships[rowID]
		if m.Status != models.MembershipRemoved {
			return models.GroupMembership{}, store.ErrConflict
		}
		// Rejoin reuses the removed row instead of inserting a second
		// one for the pair.
		m.Status = status
		m.RoleLabel = opts.RoleLabel
		m.CanInvite = opts.CanInvite
		m.CanRemove = opts.CanRemove
		m.CanEdit = opts.CanEdit
		m.JoinedAt = joinedAt
		m.UpdatedAt = now
		s.memberships[rowID] = m
		return m, nil
	}

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Status:    status,
		RoleLabel: opts.RoleLabel,
		CanInvite: opts.CanInvite,
		CanRemove: opts.CanRemove,
		CanEdit:   opts.CanEdit,
		JoinedAt:  joinedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.memberships[m.ID] = m
	s.memberKey[key] = m.ID
	return m, nil
}

func (v *membershipsView) Approve(ctx context.Context, groupID, userID primitive.ObjectID) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, ok := s.memberKey[pairKey{groupID, userID}]
	if !ok {
		return store.ErrNotFound
	}
	m := s.memberships[rowID]
	if m.Status != models.MembershipPending {
		return store.ErrNotFound
	}
	g, ok := s.groups[groupID]
	if !ok {
		return store.ErrNotFound
	}
	if g.MaxMembers != nil && s.countActiveLocked(groupID) >= int64(*g.MaxMembers) {
		return store.ErrCapacityExceeded
	}

	now := time.Now().UTC()
	m.Status = models.MembershipActive
	m.JoinedAt = &now
	m.UpdatedAt = now
	s.memberships[rowID] = m
	return nil
}

func (v *membershipsView) Remove(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, ok := s.memberKey[pairKey{groupID, userID}]
	if !ok {
		return false, nil
	}
	m := s.memberships[rowID]
	if m.Status == models.MembershipRemoved {
		return false, nil
	}
	m.Status = models.MembershipRemoved
	m.UpdatedAt = time.Now().UTC()
	s.memberships[rowID] = m
	return true, nil
}

func (v *membershipsView) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GroupMembership
	for _, m := range s.memberships {
		if m.GroupID == groupID && m.Status != models.MembershipRemoved {
			out = append(out, m)
		}
	}
	sortMembershipsOldestFirst(out)
	return out, nil
}

func (v *membershipsView) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.GroupMembership, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GroupMembership
	for _, m := range s.memberships {
		if m.UserID == userID && m.Status != models.MembershipRemoved {
			out = append(out, m)
		}
	}
	sortMembershipsOldestFirst(out)
	return out, nil
}

func (v *membershipsView) CountActive(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countActiveLocked(groupID), nil
}

func (s *Store) countActiveLocked(groupID primitive.ObjectID) int64 {
	var n int64
	for _, m := range s.memberships {
		if m.GroupID == groupID && m.Status == models.MembershipActive {
			n++
		}
	}
	return n
}

// Membership listings read oldest-first: the founder comes first and
// join order is preserved.
func sortMembershipsOldestFirst(rows []models.GroupMembership) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID.Hex() < rows[j].ID.Hex()
	})
}
