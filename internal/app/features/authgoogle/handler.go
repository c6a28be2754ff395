// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store/oauthstate"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/identity"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateTTL bounds how long a consent-screen round trip may take.
const stateTTL = 10 * time.Minute

// Handler drives the Google OAuth sign-in flow: state issue, code
// exchange, userinfo fetch, then identity resolution and session
// creation.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Resolver   *identity.Resolver
	States     oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	resolver *identity.Resolver,
	states oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Resolver:     resolver,
		States:       states,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether client credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google: issues a state token and sends
// the browser to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		shared.Error(w, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate oauth state", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.States.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save oauth state", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates the state,
// exchanges the code, fetches the verified profile, and resolves it into
// an account and a session.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("google oauth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		shared.Error(w, http.StatusUnauthorized, "sign-in was denied")
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		shared.Error(w, http.StatusBadRequest, "missing state parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.States.Validate(ctx, state)
	if err != nil {
		h.Log.Error("failed to validate oauth state", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired oauth state")
		shared.Error(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		shared.Error(w, http.StatusBadRequest, "missing code parameter")
		return
	}

	token, err := h.oauth2Config().Exchange(r.Context(), code)
	if err != nil {
		h.Log.Error("oauth code exchange failed", zap.Error(err))
		shared.Error(w, http.StatusBadGateway, "sign-in failed")
		return
	}

	profile, err := fetchGoogleUserInfo(r.Context(), token)
	if err != nil {
		h.Log.Error("failed to fetch google user info", zap.Error(err))
		shared.Error(w, http.StatusBadGateway, "sign-in failed")
		return
	}
	if !profile.EmailVerified {
		h.Log.Warn("google account email not verified", zap.String("email", profile.Email))
		shared.Error(w, http.StatusForbidden, "email address is not verified")
		return
	}

	user, principal, err := h.Resolver.Resolve(ctx, r, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDomainNotAllowed):
			shared.Error(w, http.StatusForbidden, "email domain is not allowed")
		case errors.Is(err, identity.ErrAccountDisabled):
			shared.Error(w, http.StatusForbidden, "account is disabled")
		default:
			h.Log.Error("identity resolution failed", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	su := auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
		Owner: principal.OwnerOverride,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("session creation failed", zap.Error(err), zap.String("user_id", su.ID))
		shared.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("user signed in via google oauth",
		zap.String("user_id", su.ID),
		zap.String("email", su.Email))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

// googleUserInfo is the subset of Google's userinfo payload we use.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
