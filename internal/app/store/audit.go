// internal/app/store/audit.go
package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit event categories.
const (
	AuditCategoryAuth   = "auth"
	AuditCategoryAdmin  = "admin"
	AuditCategoryAccess = "access"
)

// Auth event types.
const (
	EventLoginSuccess            = "login_success"
	EventLoginFirstSignIn        = "login_first_sign_in"
	EventLoginRejectedDomain     = "login_rejected_domain"
	EventLoginFailedUserDisabled = "login_failed_user_disabled"
	EventLogout                  = "logout"
)

// Admin event types.
const (
	EventUserRoleChanged    = "user_role_changed"
	EventUserStatusChanged  = "user_status_changed"
	EventPermissionGranted  = "permission_granted"
	EventPermissionRevoked  = "permission_revoked"
	EventGroupCreated       = "group_created"
	EventGroupUpdated       = "group_updated"
	EventGroupDeleted       = "group_deleted"
	EventMemberAdded        = "member_added_to_group"
	EventMemberApproved     = "member_approved"
	EventMemberRemoved      = "member_removed_from_group"
	EventGroupGrantAdded    = "group_permission_granted"
	EventGroupGrantRevoked  = "group_permission_revoked"
)

// AuditEvent is one append-only audit record.
type AuditEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// ActorID is who performed the action; UserID is the affected user,
	// when different.
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	UserID  *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	GroupID *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`

	// Request metadata.
	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"`
	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// AuditFilter narrows Query. Results come back newest-first.
type AuditFilter struct {
	Category  string
	EventType string
	ActorID   *primitive.ObjectID
	UserID    *primitive.ObjectID
	GroupID   *primitive.ObjectID
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}
