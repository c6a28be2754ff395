// internal/app/store/mongodb/mongodb.go

// Package mongodb implements the store contract on MongoDB. Multi-step
// writes (group create with founding membership, capacity-checked
// membership inserts, cascading deletes) run inside server-side
// transactions; on standalone deployments the txn helper degrades to
// sequential execution and the unique indexes still hold the row-level
// invariants.
package mongodb

import (
	"context"
	"errors"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/txn"
	"github.com/dalemusser/accesshub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	colUsers       = "users"
	colGroups      = "groups"
	colMemberships = "group_memberships"
	colUserGrants  = "user_permissions"
	colGroupGrants = "group_permissions"
	colResources   = "resources"
	colAudit       = "audit_events"
)

// Store implements store.Store over a mongo database. The client is
// retained for session transactions.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// New wraps the database. A nil logger is replaced with a no-op one.
func New(client *mongo.Client, db *mongo.Database, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, db: db, log: log}
}

func (s *Store) Users() store.UserStore             { return (*usersView)(s) }
func (s *Store) Groups() store.GroupStore           { return (*groupsView)(s) }
func (s *Store) Memberships() store.MembershipStore { return (*membershipsView)(s) }
func (s *Store) Permissions() store.PermissionStore { return (*permissionsView)(s) }
func (s *Store) Catalog() store.CatalogStore        { return (*catalogView)(s) }
func (s *Store) Audit() store.AuditStore            { return (*auditView)(s) }

func (s *Store) users() *mongo.Collection       { return s.db.Collection(colUsers) }
func (s *Store) groups() *mongo.Collection      { return s.db.Collection(colGroups) }
func (s *Store) memberships() *mongo.Collection { return s.db.Collection(colMemberships) }
func (s *Store) userGrants() *mongo.Collection  { return s.db.Collection(colUserGrants) }
func (s *Store) groupGrants() *mongo.Collection { return s.db.Collection(colGroupGrants) }
func (s *Store) resources() *mongo.Collection   { return s.db.Collection(colResources) }
func (s *Store) audit() *mongo.Collection       { return s.db.Collection(colAudit) }

// failed maps a raw driver error onto the store error vocabulary.
// Callers pass domain errors (validation, capacity, conflict) through
// untouched and route only driver failures here.
func failed(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case wafflemongo.IsDup(err):
		return store.ErrConflict
	default:
		return store.Unavailable(op, err)
	}
}

// AccessSnapshot implements store.Store. The four reads run in one
// transaction so the snapshot never mixes a pre-update role with a
// post-update grant; on standalone servers the reads are sequential,
// which matches what a single secondary-free deployment can observe
// anyway.
func (s *Store) AccessSnapshot(ctx context.Context, userID primitive.ObjectID) (*store.AccessSnapshot, error) {
	var snap *store.AccessSnapshot
	err := txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		var u models.User
		if err := s.users().FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return store.ErrNotFound
			}
			return err
		}

		out := &store.AccessSnapshot{
			User:        u,
			GroupGrants: make(map[primitive.ObjectID][]models.GroupPermission),
		}

		cur, err := s.memberships().Find(ctx, bson.M{
			"user_id": userID,
			"status":  models.MembershipActive,
		}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
		if err != nil {
			return err
		}
		if err := cur.All(ctx, &out.ActiveMemberships); err != nil {
			return err
		}

		if len(out.ActiveMemberships) > 0 {
			groupIDs := make([]primitive.ObjectID, 0, len(out.ActiveMemberships))
			for _, m := range out.ActiveMemberships {
				groupIDs = append(groupIDs, m.GroupID)
			}
			cur, err := s.groupGrants().Find(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}})
			if err != nil {
				return err
			}
			var grants []models.GroupPermission
			if err := cur.All(ctx, &grants); err != nil {
				return err
			}
			for _, g := range grants {
				out.GroupGrants[g.GroupID] = append(out.GroupGrants[g.GroupID], g)
			}
		}

		cur, err = s.userGrants().Find(ctx, bson.M{"user_id": userID})
		if err != nil {
			return err
		}
		if err := cur.All(ctx, &out.UserGrants); err != nil {
			return err
		}

		snap = out
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, failed("access snapshot", err)
	}
	return snap, nil
}

// page applies limit/offset to a find options builder.
func page(opts *options.FindOptions, limit, offset int64) *options.FindOptions {
	if offset > 0 {
		opts = opts.SetSkip(offset)
	}
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	return opts
}
