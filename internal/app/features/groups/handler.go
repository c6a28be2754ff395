// internal/app/features/groups/handler.go

// Package groups exposes the group CRUD, membership, and group grant
// endpoints. Handlers stay thin: gates decide access, the store performs
// the mutation, the audit logger records it.
package groups

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	Store    store.Store
	Gateway  *authz.Gateway
	AuditLog *auditlog.Logger
}

func NewHandler(st store.Store, gw *authz.Gateway, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Store:    st,
		Gateway:  gw,
		AuditLog: audit,
	}
}

// pathID parses the named chi URL parameter as an ObjectID, answering
// 400 on malformed input. The bool reports whether the caller may
// proceed.
func pathID(w http.ResponseWriter, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "malformed id")
		return primitive.NilObjectID, false
	}
	return id, true
}
