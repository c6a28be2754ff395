// internal/app/store/memstore/permissions.go
package memstore

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type permissionsView Store

func (v *permissionsView) GrantUser(ctx context.Context, grant models.UserPermission) (models.UserPermission, error) {
	if err := store.ValidateGrantPermission(grant.Permission); err != nil {
		return models.UserPermission{}, err
	}
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[grant.UserID]; !ok {
		return models.UserPermission{}, store.ErrNotFound
	}
	for _, existing := range s.userGrants[grant.UserID] {
		if existing.Permission == grant.Permission && existing.Resource == grant.Resource {
			return models.UserPermission{}, store.ErrConflict
		}
	}
	grant.ID = primitive.NewObjectID()
	grant.CreatedAt = time.Now().UTC()
	s.userGrants[grant.UserID] = append(s.userGrants[grant.UserID], grant)
	return grant, nil
}

func (v *permissionsView) RevokeUser(ctx context.Context, userID primitive.ObjectID, permission, resource string) (bool, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	grants := s.userGrants[userID]
	for i, g := range grants {
		if g.Permission == permission && g.Resource == resource {
			s.userGrants[userID] = append(grants[:i:i], grants[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (v *permissionsView) ListUserGrants(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UserPermission(nil), s.userGrants[userID]...), nil
}

func (v *permissionsView) GrantGroup(ctx context.Context, grant models.GroupPermission) (models.GroupPermission, error) {
	if err := store.ValidateGrantPermission(grant.Permission); err != nil {
		return models.GroupPermission{}, err
	}
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[grant.GroupID]; !ok {
		return models.GroupPermission{}, store.ErrNotFound
	}
	for _, existing := range s.groupGrants[grant.GroupID] {
		if existing.Permission == grant.Permission && existing.Resource == grant.Resource {
			return models.GroupPermission{}, store.ErrConflict
		}
	}
	grant.ID = primitive.NewObjectID()
	grant.CreatedAt = time.Now().UTC()
	s.groupGrants[grant.GroupID] = append(s.groupGrants[grant.GroupID], grant)
	return grant, nil
}

func (v *permissionsView) RevokeGroup(ctx context.Context, groupID primitive.ObjectID, permission, resource string) (bool, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	grants := s.groupGrants[groupID]
	for i, g := range grants {
		if g.Permission == permission && g.Resource == resource {
			s.groupGrants[groupID] = append(grants[:i:i], grants[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (v *permissionsView) ListGroupGrants(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupPermission, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.GroupPermission(nil), s.groupGrants[groupID]...), nil
}
