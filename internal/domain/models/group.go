// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group types.
const (
	GroupTypeDepartment = "department"
	GroupTypeProject    = "project"
	GroupTypeFunctional = "functional"
	GroupTypeTemporary  = "temporary"
)

// Group visibility tiers, controlling who may see a group without being
// a member of it.
const (
	VisibilityPublic     = "public"
	VisibilityRestricted = "restricted"
	VisibilityPrivate    = "private"
)

// Group represents a collaboration group.
//
// NOTE:
//   - Member lists are never embedded on Group; all membership is stored
//     in the group_memberships collection. The member count is always
//     derived from active membership rows, never stored here.
//   - Active is a soft-disable flag. Hard deletion cascades memberships
//     and group grants and is restricted to owner/admin callers.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`

	Type       string `bson:"type" json:"type"`             // department | project | functional | temporary
	Visibility string `bson:"visibility" json:"visibility"` // public | restricted | private
	MinRole    string `bson:"min_role,omitempty" json:"min_role,omitempty"` // minimum role to view a private group

	MaxMembers  *int `bson:"max_members,omitempty" json:"max_members,omitempty"`
	AutoApprove bool `bson:"auto_approve" json:"auto_approve"`
	Active      bool `bson:"active" json:"active"`

	CreatedBy primitive.ObjectID  `bson:"created_by" json:"created_by"`
	ManagerID *primitive.ObjectID `bson:"manager_id,omitempty" json:"manager_id,omitempty"`

	Tags     []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	Metadata map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
