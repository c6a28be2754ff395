// internal/app/store/mongodb/groups.go
package mongodb

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/txn"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type groupsView Store

func (v *groupsView) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	s := (*Store)(v)
	var g models.Group
	if err := s.groups().FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, failed("group get", err)
	}
	return &g, nil
}

// Create inserts the group and the creator's founding membership in one
// transaction. The unique name_ci index rejects duplicate names; if the
// membership insert fails the group insert rolls back with it.
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
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Active = true
	g.CreatedAt = now
	g.UpdatedAt = now

	err := txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		n, err := s.users().CountDocuments(ctx, bson.M{"_id": g.CreatedBy})
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		if _, err := s.groups().InsertOne(ctx, g); err != nil {
			return err
		}
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
		_, err = s.memberships().InsertOne(ctx, founder)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Group{}, store.ErrNotFound
		}
		return models.Group{}, failed("group create", err)
	}
	return g, nil
}

func (v *groupsView) Update(ctx context.Context, id primitive.ObjectID, patch store.GroupPatch) error {
	if err := store.ValidateGroupPatch(patch); err != nil {
		return err
	}

	set := bson.M{}
	unset := bson.M{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Visibility != nil {
		set["visibility"] = *patch.Visibility
	}
	if patch.MinRole != nil {
		set["min_role"] = *patch.MinRole
	}
	if patch.MaxMembers != nil {
		if *patch.MaxMembers == nil {
			unset["max_members"] = ""
		} else {
			set["max_members"] = **patch.MaxMembers
		}
	}
	if patch.AutoApprove != nil {
		set["auto_approve"] = *patch.AutoApprove
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	if patch.ManagerID != nil {
		if *patch.ManagerID == nil {
			unset["manager_id"] = ""
		} else {
			set["manager_id"] = **patch.ManagerID
		}
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Metadata != nil {
		set["metadata"] = *patch.Metadata
	}
	set["updated_at"] = time.Now().UTC()

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	s := (*Store)(v)
	res, err := s.groups().UpdateByID(ctx, id, update)
	if err != nil {
		return failed("group update", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete hard-deletes the group and cascades its membership rows and
// group grants in the same transaction so no orphans survive.
func (v *groupsView) Delete(ctx context.Context, id primitive.ObjectID) error {
	s := (*Store)(v)
	err := txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		res, err := s.groups().DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return store.ErrNotFound
		}
		if _, err := s.memberships().DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
			return err
		}
		_, err = s.groupGrants().DeleteMany(ctx, bson.M{"group_id": id})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return failed("group delete", err)
	}
	return nil
}

func (v *groupsView) List(ctx context.Context, f store.GroupFilter) ([]models.Group, error) {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["active"] = true
	}
	if len(f.Types) > 0 {
		filter["type"] = bson.M{"$in": f.Types}
	}
	if len(f.Visibilities) > 0 {
		filter["visibility"] = bson.M{"$in": f.Visibilities}
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		}
	}

	s := (*Store)(v)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.groups().Find(ctx, filter, page(opts, f.Limit, f.Offset))
	if err != nil {
		return nil, failed("group list", err)
	}
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed("group list", err)
	}
	return out, nil
}
