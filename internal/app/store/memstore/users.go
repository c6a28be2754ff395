// internal/app/store/memstore/users.go
package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type usersView Store

func (v *usersView) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (v *usersView) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emailCI[normalize.Email(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

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
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.emailCI[u.EmailCI]; dup {
		return models.User{}, store.ErrConflict
	}
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	s.emailCI[u.EmailCI] = u.ID
	return u, nil
}

func (v *usersView) RecordLogin(ctx context.Context, id primitive.ObjectID) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	u.LoginCount++
	u.LastLoginAt = &now
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}

func (v *usersView) SetRole(ctx context.Context, id primitive.ObjectID, role perms.Role) error {
	if !role.IsValid() {
		return store.Invalid("role", "must be a defined role")
	}
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Role = string(role)
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (v *usersView) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.StatusActive, models.StatusInactive, models.StatusSuspended:
	default:
		return store.Invalid("status", `must be "active", "inactive", or "suspended"`)
	}
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (v *usersView) SetProfile(ctx context.Context, id primitive.ObjectID, fullName, avatarURL string) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if name := normalize.Name(fullName); name != "" {
		u.FullName = name
		u.FullNameCI = text.Fold(name)
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (v *usersView) List(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if f.Role != "" && u.Role != string(f.Role) {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, u)
	}
	// Newest first, like every other listing.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return page(out, f.Limit, f.Offset), nil
}
