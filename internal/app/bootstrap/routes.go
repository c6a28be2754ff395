// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/accesshub/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/accesshub/internal/app/features/authgoogle"
	catalogfeature "github.com/dalemusser/accesshub/internal/app/features/catalog"
	groupsfeature "github.com/dalemusser/accesshub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/accesshub/internal/app/features/health"
	logoutfeature "github.com/dalemusser/accesshub/internal/app/features/logout"
	membershipsfeature "github.com/dalemusser/accesshub/internal/app/features/memberships"
	userinfofeature "github.com/dalemusser/accesshub/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/accesshub/internal/app/features/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/identity"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler. WAFFLE calls this
// after configuration, DB connections, schema setup, and Startup have
// completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(deps.Store.Audit(), logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Admin:  appCfg.AuditLogAdmin,
		Access: appCfg.AuditLogAccess,
	})
	gateway := authz.New(deps.Store, logger)

	defaultRole, _ := perms.ParseRole(appCfg.DefaultRole)
	resolver := identity.New(deps.Store, audit, identity.Config{
		OrgDomainSuffix: appCfg.OrgDomainSuffix,
		OwnerEmails:     appCfg.OwnerEmails,
		DefaultRole:     defaultRole,
	}, logger)

	r := chi.NewRouter()

	// Loads the SessionUser into context on every request so handlers
	// can use auth.CurrentUser and auth.Principal.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authgooglefeature.NewHandler(
		sessionMgr, resolver, deps.OAuthStates,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	signinLimiter := ratelimit.New(30, time.Minute)
	r.With(ratelimit.Middleware(signinLimiter)).
		Mount("/auth/google", authgooglefeature.Routes(authHandler))

	userinfoHandler := userinfofeature.NewHandler(gateway, logger)
	r.Mount("/me", userinfofeature.Routes(userinfoHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	groupsHandler := groupsfeature.NewHandler(deps.Store, gateway, audit, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	membershipsHandler := membershipsfeature.NewHandler(deps.Store, logger)
	r.Mount("/memberships", membershipsfeature.Routes(membershipsHandler, sessionMgr))

	catalogHandler := catalogfeature.NewHandler(deps.Store, gateway, logger)
	r.Mount("/catalog", catalogfeature.Routes(catalogHandler, sessionMgr))

	usersHandler := usersfeature.NewHandler(deps.Store, gateway, audit, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(deps.Store, gateway, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
