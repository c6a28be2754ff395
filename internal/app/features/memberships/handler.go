// internal/app/features/memberships/handler.go

// Package memberships serves the signed-in user's own membership rows.
package memberships

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/gates"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log   *zap.Logger
	Store store.Store
}

func NewHandler(st store.Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: st}
}

type membershipEntry struct {
	GroupID   string     `json:"group_id"`
	GroupName string     `json:"group_name,omitempty"`
	Status    string     `json:"status"`
	RoleLabel string     `json:"role_label,omitempty"`
	CanInvite bool       `json:"can_invite"`
	CanRemove bool       `json:"can_remove"`
	CanEdit   bool       `json:"can_edit"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HandleList handles GET /memberships: the caller's pending and active
// rows, oldest first, each annotated with the group's name when the
// group still exists.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Store.Memberships().ListByUser(ctx, res.Principal.UserID)
	if err != nil {
		shared.StoreError(w, h.Log, err)
		return
	}

	out := make([]membershipEntry, 0, len(rows))
	for _, m := range rows {
		e := membershipEntry{
			GroupID:   m.GroupID.Hex(),
			Status:    m.Status,
			RoleLabel: m.RoleLabel,
			CanInvite: m.CanInvite,
			CanRemove: m.CanRemove,
			CanEdit:   m.CanEdit,
			JoinedAt:  m.JoinedAt,
			CreatedAt: m.CreatedAt,
		}
		if g, err := h.Store.Groups().GetByID(ctx, m.GroupID); err == nil {
			e.GroupName = g.Name
		}
		out = append(out, e)
	}
	shared.JSON(w, http.StatusOK, map[string][]membershipEntry{"memberships": out})
}
