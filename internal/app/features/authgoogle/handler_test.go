// internal/app/features/authgoogle/handler_test.go
package authgoogle

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/memstore"
	"github.com/dalemusser/accesshub/internal/app/store/oauthstate"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/identity"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, clientID, clientSecret string) *Handler {
	t.Helper()

	st := memstore.New()
	audit := auditlog.New(st.Audit(), zap.NewNop(), auditlog.Config{})
	resolver := identity.New(st, audit, identity.Config{}, zap.NewNop())

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "accesshub_session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	return NewHandler(sm, resolver, oauthstate.NewMemory(), clientID, clientSecret, "https://hub.example.com", zap.NewNop())
}

func TestNewHandlerRedirectURL(t *testing.T) {
	h := newTestHandler(t, "id", "secret")
	want := "https://hub.example.com/auth/google/callback"
	if h.RedirectURL != want {
		t.Errorf("RedirectURL = %q, want %q", h.RedirectURL, want)
	}
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		want         bool
	}{
		{"both set", "id", "secret", true},
		{"missing id", "", "secret", false},
		{"missing secret", "id", "", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.clientID, tt.clientSecret)
			if got := h.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServeLoginNotConfigured(t *testing.T) {
	h := newTestHandler(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServeLoginRedirectsToGoogle(t *testing.T) {
	h := newTestHandler(t, "id", "secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google?return=/groups", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("Location = %q, want google consent URL", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("Location = %q, missing state parameter", loc)
	}
}

func TestServeCallbackMissingState(t *testing.T) {
	h := newTestHandler(t, "id", "secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeCallbackUnknownState(t *testing.T) {
	h := newTestHandler(t, "id", "secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=bogus&code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeCallbackProviderError(t *testing.T) {
	h := newTestHandler(t, "id", "secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGenerateStateUnique(t *testing.T) {
	a, err := generateState()
	if err != nil {
		t.Fatalf("generateState: %v", err)
	}
	b, err := generateState()
	if err != nil {
		t.Fatalf("generateState: %v", err)
	}
	if a == b {
		t.Error("consecutive states should differ")
	}
	if len(a) < 40 {
		t.Errorf("state too short: %d chars", len(a))
	}
}
