// internal/app/features/auditlog/handler.go

// Package auditlog serves the audit event query endpoint for the admin
// surface. Writing events is the system/auditlog Logger's job; this
// feature only reads.
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Store   store.Store
	Gateway *authz.Gateway
}

func NewHandler(st store.Store, gw *authz.Gateway, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: st, Gateway: gw}
}

// HandleQuery handles GET /audit. Filters: category, event_type,
// actor_id, user_id, group_id, start, end (RFC 3339), limit, offset.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, h.Gateway, perms.SystemViewAuditLog, "")
	if !res.OK {
		return
	}

	win := paging.Parse(r)
	f := store.AuditFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Limit:     win.Limit,
		Offset:    win.Offset,
	}

	for _, p := range []struct {
		name string
		dst  **primitive.ObjectID
	}{
		{"actor_id", &f.ActorID},
		{"user_id", &f.UserID},
		{"group_id", &f.GroupID},
	} {
		raw := query.Get(r, p.name)
		if raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "malformed "+p.name)
			return
		}
		*p.dst = &id
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start", &f.StartTime},
		{"end", &f.EndTime},
	} {
		raw := query.Get(r, p.name)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "malformed "+p.name+", want RFC 3339")
			return
		}
		*p.dst = &ts
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Store.Audit().Query(ctx, f)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"events": events})
}
