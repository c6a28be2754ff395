// internal/app/features/groups/types.go
package groups

import (
	"time"

	"github.com/dalemusser/accesshub/internal/domain/models"
)

type createGroupRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Visibility  string            `json:"visibility"`
	MinRole     string            `json:"min_role"`
	MaxMembers  *int              `json:"max_members"`
	AutoApprove bool              `json:"auto_approve"`
	Tags        []string          `json:"tags"`
	Metadata    map[string]string `json:"metadata"`
}

// updateGroupRequest distinguishes "absent" from "set to zero" with
// pointers, mirroring store.GroupPatch. ClearMaxMembers and ClearManager
// drop the respective optional field.
type updateGroupRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Visibility  *string            `json:"visibility"`
	MinRole     *string            `json:"min_role"`
	MaxMembers  *int               `json:"max_members"`
	AutoApprove *bool              `json:"auto_approve"`
	Active      *bool              `json:"active"`
	ManagerID   *string            `json:"manager_id"`
	Tags        *[]string          `json:"tags"`
	Metadata    *map[string]string `json:"metadata"`

	ClearMaxMembers bool `json:"clear_max_members"`
	ClearManager    bool `json:"clear_manager"`
}

type addMemberRequest struct {
	// UserID defaults to the caller: an empty value is a join request.
	UserID    string `json:"user_id"`
	RoleLabel string `json:"role_label"`
	CanInvite bool   `json:"can_invite"`
	CanRemove bool   `json:"can_remove"`
	CanEdit   bool   `json:"can_edit"`
}

type grantRequest struct {
	Permission string `json:"permission"`
	Resource   string `json:"resource"`
}

type groupResponse struct {
	models.Group
	MemberCount int64 `json:"member_count"`
}

type membershipResponse struct {
	ID        string     `json:"id"`
	GroupID   string     `json:"group_id"`
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	RoleLabel string     `json:"role_label,omitempty"`
	CanInvite bool       `json:"can_invite"`
	CanRemove bool       `json:"can_remove"`
	CanEdit   bool       `json:"can_edit"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toMembershipResponse(m models.GroupMembership) membershipResponse {
	return membershipResponse{
		ID:        m.ID.Hex(),
		GroupID:   m.GroupID.Hex(),
		UserID:    m.UserID.Hex(),
		Status:    m.Status,
		RoleLabel: m.RoleLabel,
		CanInvite: m.CanInvite,
		CanRemove: m.CanRemove,
		CanEdit:   m.CanEdit,
		JoinedAt:  m.JoinedAt,
		CreatedAt: m.CreatedAt,
	}
}
