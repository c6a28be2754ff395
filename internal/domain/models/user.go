// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User statuses. Only active users ever receive a positive authorization
// decision; inactive and suspended accounts are denied everything.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// User represents an authenticated account. Exactly one user exists per
// verified email (case-insensitive); the record is created on first
// sign-in and soft-disabled via Status, never hard-deleted.
//
// NOTE:
//   - Custom permission grants are not embedded on User.
//     Use the user_permissions collection to discover a user's grants.
//   - Group membership lives in the group_memberships collection.
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email      string              `bson:"email" json:"email"`
	EmailCI    string              `bson:"email_ci" json:"email_ci"` // lowercase, trimmed
	FullName   string              `bson:"full_name" json:"full_name"`
	FullNameCI string              `bson:"full_name_ci" json:"full_name_ci"`
	AvatarURL  string              `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Role       string              `bson:"role" json:"role"`     // owner | admin | team_manager | member
	Status     string              `bson:"status" json:"status"` // active | inactive | suspended
	TeamID     *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`

	LoginCount  int        `bson:"login_count" json:"login_count"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether the user may receive positive authorization
// decisions at all.
func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}
