// internal/app/features/logout/handler_test.go
package logout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/store/memstore"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, st store.Store) *Handler {
	t.Helper()

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "accesshub_session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	audit := auditlog.New(st.Audit(), zap.NewNop(), auditlog.Config{Auth: "db"})
	return NewHandler(sm, audit, zap.NewNop())
}

func TestServeLogoutRedirectsHome(t *testing.T) {
	h := newTestHandler(t, memstore.New())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestServeLogoutExpiresCookie(t *testing.T) {
	h := newTestHandler(t, memstore.New())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	var found bool
	for _, c := range rec.Header().Values("Set-Cookie") {
		if strings.HasPrefix(c, "accesshub_session=") && strings.Contains(c, "Max-Age=0") {
			found = true
		}
	}
	if !found {
		t.Error("expected an expired session cookie in the response")
	}
}

func TestServeLogoutRecordsAuditEvent(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(t, st)

	uid := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: uid.Hex(), Email: "a@example.com", Role: "member"})
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	events, err := st.Audit().Query(context.Background(), store.AuditFilter{EventType: store.EventLogout})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d logout events, want 1", len(events))
	}
	if events[0].UserID == nil || *events[0].UserID != uid {
		t.Errorf("event user = %v, want %s", events[0].UserID, uid.Hex())
	}
}
