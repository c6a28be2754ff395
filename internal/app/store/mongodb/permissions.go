// internal/app/store/mongodb/permissions.go
package mongodb

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type permissionsView Store

// GrantUser inserts a custom grant. The unique (user_id, permission,
// resource) index maps a duplicate grant to ErrConflict.
func (v *permissionsView) GrantUser(ctx context.Context, grant models.UserPermission) (models.UserPermission, error) {
	if err := store.ValidateGrantPermission(grant.Permission); err != nil {
		return models.UserPermission{}, err
	}
	s := (*Store)(v)
	n, err := s.users().CountDocuments(ctx, bson.M{"_id": grant.UserID})
	if err != nil {
		return models.UserPermission{}, failed("permission grant user", err)
	}
	if n == 0 {
		return models.UserPermission{}, store.ErrNotFound
	}
	grant.ID = primitive.NewObjectID()
	grant.CreatedAt = time.Now().UTC()
	if _, err := s.userGrants().InsertOne(ctx, grant); err != nil {
		return models.UserPermission{}, failed("permission grant user", err)
	}
	return grant, nil
}

func (v *permissionsView) RevokeUser(ctx context.Context, userID primitive.ObjectID, permission, resource string) (bool, error) {
	s := (*Store)(v)
	res, err := s.userGrants().DeleteOne(ctx, grantFilter("user_id", userID, permission, resource))
	if err != nil {
		return false, failed("permission revoke user", err)
	}
	return res.DeletedCount > 0, nil
}

func (v *permissionsView) ListUserGrants(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error) {
	s := (*Store)(v)
	cur, err := s.userGrants().Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, failed("permission list user", err)
	}
	var out []models.UserPermission
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed("permission list user", err)
	}
	return out, nil
}

func (v *permissionsView) GrantGroup(ctx context.Context, grant models.GroupPermission) (models.GroupPermission, error) {
	if err := store.ValidateGrantPermission(grant.Permission); err != nil {
		return models.GroupPermission{}, err
	}
	s := (*Store)(v)
	n, err := s.groups().CountDocuments(ctx, bson.M{"_id": grant.GroupID})
	if err != nil {
		return models.GroupPermission{}, failed("permission grant group", err)
	}
	if n == 0 {
		return models.GroupPermission{}, store.ErrNotFound
	}
	grant.ID = primitive.NewObjectID()
	grant.CreatedAt = time.Now().UTC()
	if _, err := s.groupGrants().InsertOne(ctx, grant); err != nil {
		return models.GroupPermission{}, failed("permission grant group", err)
	}
	return grant, nil
}

func (v *permissionsView) RevokeGroup(ctx context.Context, groupID primitive.ObjectID, permission, resource string) (bool, error) {
	s := (*Store)(v)
	res, err := s.groupGrants().DeleteOne(ctx, grantFilter("group_id", groupID, permission, resource))
	if err != nil {
		return false, failed("permission revoke group", err)
	}
	return res.DeletedCount > 0, nil
}

func (v *permissionsView) ListGroupGrants(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupPermission, error) {
	s := (*Store)(v)
	cur, err := s.groupGrants().Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, failed("permission list group", err)
	}
	var out []models.GroupPermission
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed("permission list group", err)
	}
	return out, nil
}

// grantFilter matches one grant row. An empty resource matches documents
// where the field is absent as well as set to "".
func grantFilter(ownerField string, ownerID primitive.ObjectID, permission, resource string) bson.M {
	f := bson.M{ownerField: ownerID, "permission": permission}
	if resource == "" {
		f["resource"] = bson.M{"$in": bson.A{"", nil}}
	} else {
		f["resource"] = resource
	}
	return f
}
