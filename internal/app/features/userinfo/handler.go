// internal/app/features/userinfo/handler.go

// Package userinfo serves the current session's identity; clients poll
// it to decide whether a sign-in is still valid and what the user may
// do.
package userinfo

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Gateway *authz.Gateway
}

func NewHandler(gw *authz.Gateway, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Gateway: gw}
}

type userInfoResponse struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Role            string   `json:"role,omitempty"`
	Permissions     []string `json:"permissions,omitempty"`
}

// ServeUserInfo handles GET /me. An anonymous session is a normal 200
// with isAuthenticated false, never a 401, so clients can probe without
// error handling.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		shared.JSON(w, http.StatusOK, userInfoResponse{})
		return
	}

	resp := userInfoResponse{
		IsAuthenticated: true,
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
	}

	if p, ok := auth.Principal(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		grants, err := h.Gateway.EffectivePermissions(ctx, p)
		if err != nil {
			h.Log.Warn("effective permissions unavailable", zap.Error(err), zap.String("user_id", u.ID))
		}
		for _, g := range grants {
			if g.Kind == perms.GrantGlobal {
				resp.Permissions = append(resp.Permissions, string(g.Permission))
			}
		}
	}

	shared.JSON(w, http.StatusOK, resp)
}
