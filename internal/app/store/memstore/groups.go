// internal/app/store/memstore/groups.go
package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type groupsView Store

func (v *groupsView) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

// Create inserts the group and its founding membership under one lock
// hold: either both exist afterwards or neither does.
func (v *groupsView) Create(ctx context.Context, g models.Group) (models.Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.NameCI = text.Fold(g.Name)
	if g.Visibility == "" {
		g.Visibility = models.VisibilityPublic
	}
	if g.MinRole == "" {
		g.MinRole = string(perms.RoleMember)
	}
	if err := store.ValidateNewGroup(g); err != nil {
		return models.Group{}, err
	}

	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.groupName[g.NameCI]; dup {
		return models.Group{}, store.ErrConflict
	}
	if _, ok := s.users[g.CreatedBy]; !ok {
		return models.Group{}, store.ErrNotFound
	}

	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Active = true
	g.CreatedAt = now
	g.UpdatedAt = now
	s.groups[g.ID] = g
	s.groupName[g.NameCI] = g.ID

	founder := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   g.ID,
		UserID:    g.CreatedBy,
		Status:    models.MembershipActive,
		RoleLabel: "Creator",
		CanInvite: true,
		CanRemove: true,
		CanEdit:   true,
		JoinedAt:  &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.memberships[founder.ID] = founder
	s.memberKey[pairKey{g.ID, g.CreatedBy}] = founder.ID

	return g, nil
}

func (v *groupsView) Update(ctx context.Context, id primitive.ObjectID, patch store.GroupPatch) error {
	if err := store.ValidateGroupPatch(patch); err != nil {
		return err
	}

	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return store.ErrNotFound
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		nameCI := text.Fold(name)
		if other, dup := s.groupName[nameCI]; dup && other != id {
			return store.ErrConflict
		}
		delete(s.groupName, g.NameCI)
		g.Name = name
		g.NameCI = nameCI
		s.groupName[nameCI] = id
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.Visibility != nil {
		g.Visibility = *patch.Visibility
	}
	if patch.MinRole != nil {
		g.MinRole = *patch.MinRole
	}
	if patch.MaxMembers != nil {
		g.MaxMembers = *patch.MaxMembers
	}
	if patch.AutoApprove != nil {
		g.AutoApprove = *patch.AutoApprove
	}
	if patch.Active != nil {
		g.Active = *patch.Active
	}
	if patch.ManagerID != nil {
		g.ManagerID = *patch.ManagerID
	}
	if patch.Tags != nil {
		g.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Metadata != nil {
		md := make(map[string]string, len(*patch.Metadata))
		for k, val := range *patch.Metadata {
			md[k] = val
		}
		g.Metadata = md
	}
	g.UpdatedAt = time.Now().UTC()
	s.groups[id] = g
	return nil
}

// Delete removes the group, its membership rows, and its group grants in
// one lock hold so no orphans survive.
func (v *groupsView) Delete(ctx context.Context, id primitive.ObjectID) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.groups, id)
	delete(s.groupName, g.NameCI)
	for rowID, m := range s.memberships {
		if m.GroupID == id {
			delete(s.memberships, rowID)
			delete(s.memberKey, pairKey{id, m.UserID})
		}
	}
	delete(s.groupGrants, id)
	return nil
}

func (v *groupsView) List(ctx context.Context, f store.GroupFilter) ([]models.Group, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	search := text.Fold(strings.TrimSpace(f.Search))
	var out []models.Group
	for _, g := range s.groups {
		if !f.IncludeInactive && !g.Active {
			continue
		}
		if len(f.Types) > 0 && !containsString(f.Types, g.Type) {
			continue
		}
		if len(f.Visibilities) > 0 && !containsString(f.Visibilities, g.Visibility) {
			continue
		}
		if search != "" && !groupMatches(g, search) {
			continue
		}
		out = append(out, g)
	}
	sortGroupsNewestFirst(out)
	return page(out, f.Limit, f.Offset), nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func groupMatches(g models.Group, foldedSearch string) bool {
	if strings.Contains(g.NameCI, foldedSearch) {
		return true
	}
	if strings.Contains(text.Fold(g.Description), foldedSearch) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(text.Fold(tag), foldedSearch) {
			return true
		}
	}
	return false
}
