// internal/domain/models/permission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPermission is a custom grant attached directly to a user, on top of
// whatever the user's role already provides. An empty Resource means the
// grant is global (matches any resource check); a non-empty Resource
// narrows the grant to checks against that exact resource.
type UserPermission struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Permission string             `bson:"permission" json:"permission"`
	Resource   string             `bson:"resource,omitempty" json:"resource,omitempty"`

	GrantedBy primitive.ObjectID `bson:"granted_by,omitempty" json:"granted_by,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// GroupPermission is a grant scoped to a group: it extends the effective
// capability set of every active member of that group, and stops applying
// the moment the membership is no longer active.
type GroupPermission struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"group_id"`
	Permission string             `bson:"permission" json:"permission"`
	Resource   string             `bson:"resource,omitempty" json:"resource,omitempty"`

	GrantedBy primitive.ObjectID `bson:"granted_by,omitempty" json:"granted_by,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
