// internal/app/store/mongodb/users.go
package mongodb

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type usersView Store

func (v *usersView) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s := (*Store)(v)
	var u models.User
	if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, failed("user get", err)
	}
	return &u, nil
}

func (v *usersView) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := (*Store)(v)
	var u models.User
	if err := s.users().FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, failed("user get by email", err)
	}
	return &u, nil
}

// Create normalizes and validates, then inserts. The unique email_ci
// index turns a concurrent duplicate into ErrConflict.
func (v *usersView) Create(ctx context.Context, u models.User) (models.User, error) {
	u.Email = normalize.Email(u.Email)
	u.EmailCI = u.Email
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if err := store.ValidateNewUser(u); err != nil {
		return models.User{}, err
	}

	s := (*Store)(v)
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		return models.User{}, failed("user create", err)
	}
	return u, nil
}

func (v *usersView) RecordLogin(ctx context.Context, id primitive.ObjectID) error {
	s := (*Store)(v)
	now := time.Now().UTC()
	res, err := s.users().UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"login_count": 1},
		"$set": bson.M{"last_login_at": now, "updated_at": now},
	})
	if err != nil {
		return failed("user record login", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (v *usersView) SetRole(ctx context.Context, id primitive.ObjectID, role perms.Role) error {
	if !role.IsValid() {
		return store.Invalid("role", "must be a defined role")
	}
	return (*Store)(v).setUserFields(ctx, id, "user set role", bson.M{"role": string(role)})
}

func (v *usersView) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.StatusActive, models.StatusInactive, models.StatusSuspended:
	default:
		return store.Invalid("status", `must be "active", "inactive", or "suspended"`)
	}
	return (*Store)(v).setUserFields(ctx, id, "user set status", bson.M{"status": status})
}

// SetProfile refreshes the display fields from the identity provider.
// Empty inputs leave the stored values alone so a provider that stops
// sending a field cannot blank it out.
func (v *usersView) SetProfile(ctx context.Context, id primitive.ObjectID, fullName, avatarURL string) error {
	set := bson.M{}
	if name := normalize.Name(fullName); name != "" {
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if avatarURL != "" {
		set["avatar_url"] = avatarURL
	}
	return (*Store)(v).setUserFields(ctx, id, "user set profile", set)
}

func (s *Store) setUserFields(ctx context.Context, id primitive.ObjectID, op string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.users().UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return failed(op, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (v *usersView) List(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	s := (*Store)(v)
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.users().Find(ctx, filter, page(opts, f.Limit, f.Offset))
	if err != nil {
		return nil, failed("user list", err)
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed("user list", err)
	}
	return out, nil
}
