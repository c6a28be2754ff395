// Package gates provides authorization gate functions for HTTP
// handlers.
//
// Authorization runs in three tiers:
//
//  1. Route-level middleware (auth.LoadSessionUser, RequireSignedIn)
//     applied in routes.go for coarse access control.
//
//  2. Handler-level gates (this package). Gates check the session and
//     the access gateway, write the JSON error response on failure, and
//     hand back the principal on success. A handler that receives
//     Result.OK == true can proceed without further ceremony.
//
//  3. The gateway's group wrappers (authz.CanManageGroup and friends)
//     for checks that depend on the specific resource.
//
// Handlers behind RequireSignedIn still use gates for permission
// checks; the middleware only guarantees a session exists.
package gates

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
)

// Result is the outcome of a gate check. When OK is false the response
// has already been written.
type Result struct {
	Principal authz.Principal
	Name      string
	Role      string
	OK        bool
}

// RequireAuth ensures a signed-in user with a well-formed ID and
// answers 401 JSON otherwise.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	u, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return Result{}
	}
	p, ok := auth.Principal(r)
	if !ok {
		// Session exists but the cached ID is malformed. Fail closed.
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return Result{}
	}
	return Result{Principal: p, Name: u.Name, Role: u.Role, OK: true}
}

// RequirePermission gates on one permission via the access gateway.
// Denials answer 403 with the decision reason; gateway failures answer
// 500.
func RequirePermission(w http.ResponseWriter, r *http.Request, gw *authz.Gateway, permission perms.Permission, resource string) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return Result{}
	}
	d, err := gw.Authorize(r.Context(), res.Principal, permission, resource)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "authorization unavailable")
		return Result{}
	}
	if !d.Allow {
		writeDenied(w, d)
		return Result{}
	}
	return res
}

// RequireAdminPanel gates on admin-surface access.
func RequireAdminPanel(w http.ResponseWriter, r *http.Request, gw *authz.Gateway) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return Result{}
	}
	ok, err := gw.CanAccessAdminPanel(r.Context(), res.Principal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "authorization unavailable")
		return Result{}
	}
	if !ok {
		writeError(w, http.StatusForbidden, "forbidden")
		return Result{}
	}
	return res
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeDenied(w http.ResponseWriter, d authz.Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  "forbidden",
		"reason": d.Reason,
	})
}
