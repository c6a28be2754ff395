// internal/app/store/mongodb/memberships.go
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/txn"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type membershipsView Store

func (v *membershipsView) Get(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMembership, error) {
	s := (*Store)(v)
	var m models.GroupMembership
	err := s.memberships().FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if err != nil {
		return nil, failed("membership get", err)
	}
	return &m, nil
}

// Add creates or reactivates the (group, user) row. The capacity check
// and the write share a transaction, so concurrent joins cannot push an
// active count past the group's cap; the unique compound index keeps the
// pair to one row even without transactions.
func (v *membershipsView) Add(ctx context.Context, groupID, userID primitive.ObjectID, opts store.AddMemberOptions) (models.GroupMembership, error) {
	s := (*Store)(v)
	var out models.GroupMembership
	err := txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		var g models.Group
		if err := s.groups().FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return store.ErrNotFound
			}
			return err
		}
		n, err := s.users().CountDocuments(ctx, bson.M{"_id": userID})
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}

		if g.MaxMembers != nil {
			active, err := s.countActive(ctx, groupID)
			if err != nil {
				return err
			}
			if active >= int64(*g.MaxMembers) {
				return store.ErrCapacityExceeded
			}
		}

		now := time.Now().UTC()
		status := models.MembershipPending
		var joinedAt *time.Time
		if g.AutoApprove {
			status = models.MembershipActive
			joinedAt = &now
		}

		var existing models.GroupMembership
		err = s.memberships().FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&existing)
		switch {
		case err == nil:
			if existing.Status != models.MembershipRemoved {
				return store.ErrConflict
			}
			// Rejoin reuses the removed row instead of inserting a
			// second one for the pair.
			set := bson.M{
				"status":     status,
				"role_label": opts.RoleLabel,
				"can_invite": opts.CanInvite,
				"can_remove": opts.CanRemove,
				"can_edit":   opts.CanEdit,
				"updated_at": now,
			}
			update := bson.M{"$set": set}
			if joinedAt != nil {
				set["joined_at"] = *joinedAt
			} else {
				update["$unset"] = bson.M{"joined_at": ""}
			}
			if _, err := s.memberships().UpdateByID(ctx, existing.ID, update); err != nil {
				return err
			}
			existing.Status = status
			existing.RoleLabel = opts.RoleLabel
			existing.CanInvite = opts.CanInvite
			existing.CanRemove = opts.CanRemove
			existing.CanEdit = opts.CanEdit
			existing.JoinedAt = joinedAt
			existing.UpdatedAt = now
			out = existing
			return nil
		case errors.Is(err, mongo.ErrNoDocuments):
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
			if _, err := s.memberships().InsertOne(ctx, m); err != nil {
				return err
			}
			out = m
			return nil
		default:
			return err
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return models.GroupMembership{}, store.ErrNotFound
		case errors.Is(err, store.ErrConflict):
			return models.GroupMembership{}, store.ErrConflict
		case errors.Is(err, store.ErrCapacityExceeded):
			return models.GroupMembership{}, store.ErrCapacityExceeded
		}
		return models.GroupMembership{}, failed("membership add", err)
	}
	return out, nil
}

// Approve transitions a pending row to active, re-checking capacity in
// the same transaction.
func (v *membershipsView) Approve(ctx context.Context, groupID, userID primitive.ObjectID) error {
	s := (*Store)(v)
	err := txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		var g models.Group
		if err := s.groups().FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return store.ErrNotFound
			}
			return err
		}
		if g.MaxMembers != nil {
			active, err := s.countActive(ctx, groupID)
			if err != nil {
				return err
			}
			if active >= int64(*g.MaxMembers) {
				return store.ErrCapacityExceeded
			}
		}

		now := time.Now().UTC()
		res, err := s.memberships().UpdateOne(ctx,
			bson.M{"group_id": groupID, "user_id": userID, "status": models.MembershipPending},
			bson.M{"$set": bson.M{
				"status":     models.MembershipActive,
				"joined_at":  now,
				"updated_at": now,
			}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return store.ErrNotFound
		case errors.Is(err, store.ErrCapacityExceeded):
			return store.ErrCapacityExceeded
		}
		return failed("membership approve", err)
	}
	return nil
}

// Remove flips the row to removed, preserving history. Reports whether a
// pending or active membership existed.
func (v *membershipsView) Remove(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s := (*Store)(v)
	res, err := s.memberships().UpdateOne(ctx,
		bson.M{
			"group_id": groupID,
			"user_id":  userID,
			"status":   bson.M{"$ne": models.MembershipRemoved},
		},
		bson.M{"$set": bson.M{
			"status":     models.MembershipRemoved,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return false, failed("membership remove", err)
	}
	return res.MatchedCount > 0, nil
}

func (v *membershipsView) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	return (*Store)(v).listMemberships(ctx, "membership list by group", bson.M{"group_id": groupID})
}

func (v *membershipsView) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.GroupMembership, error) {
	return (*Store)(v).listMemberships(ctx, "membership list by user", bson.M{"user_id": userID})
}

// Membership listings read oldest-first: the founder comes first and
// join order is preserved.
func (s *Store) listMemberships(ctx context.Context, op string, filter bson.M) ([]models.GroupMembership, error) {
	filter["status"] = bson.M{"$ne": models.MembershipRemoved}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.memberships().Find(ctx, filter, opts)
	if err != nil {
		return nil, failed(op, err)
	}
	var out []models.GroupMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed(op, err)
	}
	return out, nil
}

func (v *membershipsView) CountActive(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	n, err := (*Store)(v).countActive(ctx, groupID)
	if err != nil {
		return 0, failed("membership count", err)
	}
	return n, nil
}

func (s *Store) countActive(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.memberships().CountDocuments(ctx, bson.M{
		"group_id": groupID,
		"status":   models.MembershipActive,
	})
}
