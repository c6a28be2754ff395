// internal/app/system/identity/resolver.go
//
// Package identity turns a verified email from the OAuth provider into
// a local account and an authorization principal. Accounts are created
// on first sign-in; there is no separate registration flow.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrDomainNotAllowed means the email is outside the configured
	// organization domain. Nothing is written when this is returned.
	ErrDomainNotAllowed = errors.New("email outside organization domain")

	// ErrAccountDisabled means the account exists but is not active.
	ErrAccountDisabled = errors.New("account disabled")
)

// Config holds the identity rules from app configuration.
type Config struct {
	// OrgDomainSuffix restricts sign-in to one email domain, e.g.
	// "example.com". Empty allows any domain.
	OrgDomainSuffix string
	// OwnerEmails are the addresses that receive the owner override,
	// compared case-insensitively.
	OwnerEmails []string
	// DefaultRole is assigned to accounts created on first sign-in.
	DefaultRole perms.Role
}

// Resolver resolves sign-ins against the user store.
type Resolver struct {
	store  store.Store
	audit  *auditlog.Logger
	log    *zap.Logger
	cfg    Config
	owners map[string]bool
}

// New builds a Resolver.
func New(st store.Store, audit *auditlog.Logger, cfg Config, log *zap.Logger) *Resolver {
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = perms.RoleMember
	}
	if log == nil {
		log = zap.NewNop()
	}
	owners := make(map[string]bool, len(cfg.OwnerEmails))
	for _, e := range cfg.OwnerEmails {
		if e = normalize.Email(e); e != "" {
			owners[e] = true
		}
	}
	return &Resolver{store: st, audit: audit, log: log, cfg: cfg, owners: owners}
}

// Resolve handles one verified sign-in: enforce the domain rule, create
// the account on first sign-in, refresh the profile, record the login,
// and build the principal. The owner override is decided here, from the
// email, and lives only on the returned principal.
func (rv *Resolver) Resolve(ctx context.Context, r *http.Request, email, fullName, avatarURL string) (*models.User, authz.Principal, error) {
	email = normalize.Email(email)

	if rv.cfg.OrgDomainSuffix != "" && !emailInDomain(email, rv.cfg.OrgDomainSuffix) {
		rv.audit.LoginRejectedDomain(ctx, r, email)
		return nil, authz.Principal{}, ErrDomainNotAllowed
	}

	user, firstSignIn, err := rv.lookupOrCreate(ctx, email, fullName, avatarURL)
	if err != nil {
		return nil, authz.Principal{}, err
	}

	if !user.IsActive() {
		rv.audit.LoginFailedUserDisabled(ctx, r, user.ID, email)
		return nil, authz.Principal{}, ErrAccountDisabled
	}

	if err := rv.store.Users().RecordLogin(ctx, user.ID); err != nil {
		// The sign-in itself succeeded; a failed counter bump is not
		// worth turning the user away for.
		rv.log.Warn("failed to record login", zap.Error(err), zap.String("user_id", user.ID.Hex()))
	}
	if !firstSignIn {
		if err := rv.store.Users().SetProfile(ctx, user.ID, fullName, avatarURL); err != nil {
			rv.log.Warn("failed to refresh profile", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		}
	}

	if firstSignIn {
		rv.audit.LoginFirstSignIn(ctx, r, user.ID, email)
	}
	rv.audit.LoginSuccess(ctx, r, user.ID, email)

	p := authz.Principal{
		UserID:        user.ID,
		Email:         email,
		OwnerOverride: rv.owners[email],
	}
	return user, p, nil
}

// IsOwnerEmail reports whether the email holds the owner override.
func (rv *Resolver) IsOwnerEmail(email string) bool {
	return rv.owners[normalize.Email(email)]
}

func (rv *Resolver) lookupOrCreate(ctx context.Context, email, fullName, avatarURL string) (*models.User, bool, error) {
	user, err := rv.store.Users().GetByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	created, err := rv.store.Users().Create(ctx, models.User{
		Email:     email,
		FullName:  fullName,
		AvatarURL: avatarURL,
		Role:      string(rv.cfg.DefaultRole),
		Status:    models.StatusActive,
	})
	if err == nil {
		rv.log.Info("created account on first sign-in",
			zap.String("user_id", created.ID.Hex()),
			zap.String("email", email))
		return &created, true, nil
	}
	if errors.Is(err, store.ErrConflict) {
		// Two concurrent first sign-ins for the same address; the
		// other one won, so read its row.
		user, err := rv.store.Users().GetByEmail(ctx, email)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	return nil, false, err
}

func emailInDomain(email, suffix string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	suffix = strings.ToLower(strings.TrimPrefix(suffix, "@"))
	return domain == suffix || strings.HasSuffix(domain, "."+suffix)
}
