// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership statuses. A membership row is never deleted on exit; it
// transitions to removed so the audit history survives, and a rejoin
// reuses the same row.
const (
	MembershipPending = "pending"
	MembershipActive  = "active"
	MembershipRemoved = "removed"
)

// GroupMembership is the authoritative join between users and groups.
// Exactly one document per (group_id, user_id), enforced by a unique
// compound index.
type GroupMembership struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`

	Status    string `bson:"status" json:"status"`         // pending | active | removed
	RoleLabel string `bson:"role_label" json:"role_label"` // free text, e.g. "Creator"

	CanInvite bool `bson:"can_invite" json:"can_invite"`
	CanRemove bool `bson:"can_remove" json:"can_remove"`
	CanEdit   bool `bson:"can_edit" json:"can_edit"`

	JoinedAt  *time.Time `bson:"joined_at,omitempty" json:"joined_at,omitempty"` // set when the membership becomes active
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}
