// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config controls where each audit category goes.
// Values: "all" (store + zap), "db" (store only), "log" (zap only),
// "off" (disabled).
type Config struct {
	// Auth covers sign-in, sign-out, and rejected logins.
	Auth string
	// Admin covers role/status changes, grants, and group CRUD.
	Admin string
	// Access covers membership add/approve/remove events.
	Access string
}

// Logger mirrors audit events to the audit store and to zap. Store
// writes are best-effort: a failed write is logged at error level and
// never fails the calling mutation.
type Logger struct {
	store  store.AuditStore
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(st store.AuditStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: st, zapLog: zapLog, config: config}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// stamp fills the per-request metadata common to every event.
func stamp(e store.AuditEvent, r *http.Request) store.AuditEvent {
	e.RequestID = uuid.NewString()
	if r != nil {
		e.IP = getClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

func (l *Logger) logToZap(e store.AuditEvent) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
		zap.String("request_id", e.RequestID),
	}
	if e.ActorID != nil {
		fields = append(fields, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.UserID != nil {
		fields = append(fields, zap.String("user_id", e.UserID.Hex()))
	}
	if e.GroupID != nil {
		fields = append(fields, zap.String("group_id", e.GroupID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records one event per the category's configuration. A nil Logger
// is a no-op, so tests can skip wiring one.
func (l *Logger) Log(ctx context.Context, e store.AuditEvent) {
	if l == nil {
		return
	}

	var setting string
	switch e.Category {
	case store.AuditCategoryAuth:
		setting = l.config.Auth
	case store.AuditCategoryAdmin:
		setting = l.config.Admin
	case store.AuditCategoryAccess:
		setting = l.config.Access
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(e)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, e); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", e.EventType),
			)
		}
	}
}

// --- Authentication events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAuth,
		EventType: store.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}, r))
}

func (l *Logger) LoginFirstSignIn(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAuth,
		EventType: store.EventLoginFirstSignIn,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}, r))
}

func (l *Logger) LoginRejectedDomain(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:      store.AuditCategoryAuth,
		EventType:     store.EventLoginRejectedDomain,
		Success:       false,
		FailureReason: "email outside organization domain",
		Details:       map[string]string{"email": email},
	}, r))
}

func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:      store.AuditCategoryAuth,
		EventType:     store.EventLoginFailedUserDisabled,
		UserID:        &userID,
		Success:       false,
		FailureReason: "account disabled",
		Details:       map[string]string{"email": email},
	}, r))
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAuth,
		EventType: store.EventLogout,
		UserID:    &userID,
		Success:   true,
	}, r))
}

// --- Admin events ---

func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, oldRole, newRole string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventUserRoleChanged,
		ActorID:   &actorID,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"old_role": oldRole, "new_role": newRole},
	}, r))
}

func (l *Logger) UserStatusChanged(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, oldStatus, newStatus string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventUserStatusChanged,
		ActorID:   &actorID,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"old_status": oldStatus, "new_status": newStatus},
	}, r))
}

func (l *Logger) PermissionGranted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, permission, resource string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventPermissionGranted,
		ActorID:   &actorID,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"permission": permission, "resource": resource},
	}, r))
}

func (l *Logger) PermissionRevoked(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, permission, resource string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventPermissionRevoked,
		ActorID:   &actorID,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"permission": permission, "resource": resource},
	}, r))
}

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, name string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventGroupCreated,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"name": name},
	}, r))
}

func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventGroupUpdated,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
	}, r))
}

func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, name string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventGroupDeleted,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"name": name},
	}, r))
}

func (l *Logger) GroupGrantAdded(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, permission, resource string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventGroupGrantAdded,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"permission": permission, "resource": resource},
	}, r))
}

func (l *Logger) GroupGrantRevoked(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, permission, resource string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAdmin,
		EventType: store.EventGroupGrantRevoked,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"permission": permission, "resource": resource},
	}, r))
}

// --- Membership events ---

func (l *Logger) MemberAdded(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID, status string) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAccess,
		EventType: store.EventMemberAdded,
		ActorID:   &actorID,
		GroupID:   &groupID,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"status": status},
	}, r))
}

func (l *Logger) MemberApproved(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAccess,
		EventType: store.EventMemberApproved,
		ActorID:   &actorID,
		GroupID:   &groupID,
		UserID:    &userID,
		Success:   true,
	}, r))
}

func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, groupID, userID primitive.ObjectID) {
	l.Log(ctx, stamp(store.AuditEvent{
		Category:  store.AuditCategoryAccess,
		EventType: store.EventMemberRemoved,
		ActorID:   &actorID,
		GroupID:   &groupID,
		UserID:    &userID,
		Success:   true,
	}, r))
}
