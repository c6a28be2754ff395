// internal/app/features/groups/handler_test.go
package groups

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/store/memstore"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/authz"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestHandler(st store.Store) *Handler {
	gw := authz.New(st, zap.NewNop())
	audit := auditlog.New(st.Audit(), zap.NewNop(), auditlog.Config{Admin: "db", Access: "db"})
	return NewHandler(st, gw, audit, zap.NewNop())
}

func mustCreateUser(t *testing.T, st store.Store, email, role string) models.User {
	t.Helper()
	u, err := st.Users().Create(context.Background(), models.User{
		Email:    email,
		FullName: "Test User",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustCreateGroup(t *testing.T, st store.Store, creator models.User, mut func(*models.Group)) models.Group {
	t.Helper()
	g := models.Group{
		Name:      "Engineering",
		Type:      models.GroupTypeDepartment,
		CreatedBy: creator.ID,
	}
	if mut != nil {
		mut(&g)
	}
	created, err := st.Groups().Create(context.Background(), g)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return created
}

// request builds an authenticated request with chi URL params attached.
func request(method, target string, body any, u models.User, params map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleCreate(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	member := mustCreateUser(t, st, "maker@example.com", "member")

	req := request(http.MethodPost, "/groups", createGroupRequest{
		Name: "Platform <b>Team</b>",
		Type: models.GroupTypeProject,
	}, member, nil)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var got groupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "Platform Team" {
		t.Errorf("name = %q, want markup stripped", got.Name)
	}
	if got.MemberCount != 1 {
		t.Errorf("member_count = %d, want 1 (founder)", got.MemberCount)
	}

	m, err := st.Memberships().Get(context.Background(), got.ID, member.ID)
	if err != nil {
		t.Fatalf("founder membership missing: %v", err)
	}
	if m.Status != models.MembershipActive || !m.CanEdit {
		t.Errorf("founder membership = %+v, want active with edit capability", m)
	}
}

func TestHandleCreateUnauthenticated(t *testing.T) {
	h := newTestHandler(memstore.New())

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleCreateValidation(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	member := mustCreateUser(t, st, "maker@example.com", "member")

	req := request(http.MethodPost, "/groups", createGroupRequest{Name: "", Type: "project"}, member, nil)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestHandleGetHidesPrivateGroups(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	outsider := mustCreateUser(t, st, "out@example.com", "member")
	g := mustCreateGroup(t, st, admin, func(g *models.Group) {
		g.Visibility = models.VisibilityPrivate
	})

	req := request(http.MethodGet, "/groups/"+g.ID.Hex(), nil, outsider, map[string]string{"id": g.ID.Hex()})
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// The creator holds an active membership and sees it.
	req = request(http.MethodGet, "/groups/"+g.ID.Hex(), nil, admin, map[string]string{"id": g.ID.Hex()})
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("creator status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleListFiltersVisibility(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	member := mustCreateUser(t, st, "m@example.com", "member")

	mustCreateGroup(t, st, admin, func(g *models.Group) { g.Name = "Open" })
	mustCreateGroup(t, st, admin, func(g *models.Group) {
		g.Name = "Hidden"
		g.Visibility = models.VisibilityPrivate
	})

	req := request(http.MethodGet, "/groups", nil, member, nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Groups []groupResponse `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Groups) != 1 || got.Groups[0].Name != "Open" {
		t.Errorf("groups = %+v, want only the public group", got.Groups)
	}
}

func TestHandleUpdateRequiresManage(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	creator := mustCreateUser(t, st, "creator@example.com", "member")
	other := mustCreateUser(t, st, "other@example.com", "member")
	g := mustCreateGroup(t, st, creator, nil)

	desc := "now with <script>alert(1)</script>purpose"
	body := updateGroupRequest{Description: &desc}

	req := request(http.MethodPut, "/groups/"+g.ID.Hex(), body, other, map[string]string{"id": g.ID.Hex()})
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-manager status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// The founder carries the edit capability.
	req = request(http.MethodPut, "/groups/"+g.ID.Hex(), body, creator, map[string]string{"id": g.ID.Hex()})
	rec = httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("founder status = %d: %s", rec.Code, rec.Body.String())
	}

	var got groupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Description != "now with purpose" {
		t.Errorf("description = %q, want script stripped", got.Description)
	}
}

func TestHandleDeleteCascades(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	member := mustCreateUser(t, st, "m@example.com", "member")
	g := mustCreateGroup(t, st, admin, nil)

	if _, err := st.Memberships().Add(context.Background(), g.ID, member.ID, store.AddMemberOptions{}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	// Plain members cannot delete.
	req := request(http.MethodDelete, "/groups/"+g.ID.Hex(), nil, member, map[string]string{"id": g.ID.Hex()})
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member delete status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = request(http.MethodDelete, "/groups/"+g.ID.Hex(), nil, admin, map[string]string{"id": g.ID.Hex()})
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete status = %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := st.Groups().GetByID(context.Background(), g.ID); err == nil {
		t.Error("group still present after delete")
	}
	rows, err := st.Memberships().ListByGroup(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list memberships: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("memberships survived the delete: %+v", rows)
	}
}

func TestHandleAddMemberSelfJoin(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	joiner := mustCreateUser(t, st, "j@example.com", "member")
	g := mustCreateGroup(t, st, admin, nil)

	req := request(http.MethodPost, "/groups/"+g.ID.Hex()+"/members",
		addMemberRequest{CanEdit: true}, joiner, map[string]string{"id": g.ID.Hex()})
	rec := httptest.NewRecorder()
	h.HandleAddMember(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got membershipResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.MembershipPending {
		t.Errorf("status = %q, want pending without auto-approve", got.Status)
	}
	if got.CanEdit {
		t.Error("self-join must not carry capability flags")
	}
}

func TestHandleAddMemberInviteRequiresCapability(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	plain := mustCreateUser(t, st, "p@example.com", "member")
	target := mustCreateUser(t, st, "t@example.com", "member")
	g := mustCreateGroup(t, st, admin, nil)

	if _, err := st.Memberships().Add(context.Background(), g.ID, plain.ID, store.AddMemberOptions{}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := st.Memberships().Approve(context.Background(), g.ID, plain.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	req := request(http.MethodPost, "/groups/"+g.ID.Hex()+"/members",
		addMemberRequest{UserID: target.ID.Hex()}, plain, map[string]string{"id": g.ID.Hex()})
	rec := httptest.NewRecorder()
	h.HandleAddMember(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("plain member invite status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = request(http.MethodPost, "/groups/"+g.ID.Hex()+"/members",
		addMemberRequest{UserID: target.ID.Hex()}, admin, map[string]string{"id": g.ID.Hex()})
	rec = httptest.NewRecorder()
	h.HandleAddMember(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin invite status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleApproveAndRemove(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	joiner := mustCreateUser(t, st, "j@example.com", "member")
	g := mustCreateGroup(t, st, admin, nil)

	if _, err := st.Memberships().Add(context.Background(), g.ID, joiner.ID, store.AddMemberOptions{}); err != nil {
		t.Fatalf("add: %v", err)
	}

	params := map[string]string{"id": g.ID.Hex(), "userID": joiner.ID.Hex()}

	req := request(http.MethodPost, "/approve", nil, admin, params)
	rec := httptest.NewRecorder()
	h.HandleApproveMember(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("approve status = %d: %s", rec.Code, rec.Body.String())
	}

	m, err := st.Memberships().Get(context.Background(), g.ID, joiner.ID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if m.Status != models.MembershipActive || m.JoinedAt == nil {
		t.Errorf("membership = %+v, want active with joined_at", m)
	}

	// The member may remove themselves.
	req = request(http.MethodDelete, "/members", nil, joiner, params)
	rec = httptest.NewRecorder()
	h.HandleRemoveMember(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("self-remove status = %d: %s", rec.Code, rec.Body.String())
	}

	m, err = st.Memberships().Get(context.Background(), g.ID, joiner.ID)
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if m.Status != models.MembershipRemoved {
		t.Errorf("status = %q, want removed", m.Status)
	}
}

func TestHandleRemoveOtherRequiresCapability(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	a := mustCreateUser(t, st, "a@example.com", "member")
	b := mustCreateUser(t, st, "b@example.com", "member")
	g := mustCreateGroup(t, st, admin, func(g *models.Group) { g.AutoApprove = true })

	for _, u := range []models.User{a, b} {
		if _, err := st.Memberships().Add(context.Background(), g.ID, u.ID, store.AddMemberOptions{}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	req := request(http.MethodDelete, "/members", nil, a, map[string]string{"id": g.ID.Hex(), "userID": b.ID.Hex()})
	rec := httptest.NewRecorder()
	h.HandleRemoveMember(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleGrantsAdminOnly(t *testing.T) {
	st := memstore.New()
	h := newTestHandler(st)
	admin := mustCreateUser(t, st, "admin@example.com", "admin")
	member := mustCreateUser(t, st, "m@example.com", "member")
	g := mustCreateGroup(t, st, admin, nil)

	params := map[string]string{"id": g.ID.Hex()}
	body := grantRequest{Permission: "content:view_hr"}

	req := request(http.MethodPost, "/grants", body, member, params)
	rec := httptest.NewRecorder()
	h.HandleAddGrant(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = request(http.MethodPost, "/grants", body, admin, params)
	rec = httptest.NewRecorder()
	h.HandleAddGrant(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin status = %d: %s", rec.Code, rec.Body.String())
	}

	req = request(http.MethodPost, "/grants", grantRequest{Permission: "nonsense"}, admin, params)
	rec = httptest.NewRecorder()
	h.HandleAddGrant(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown token status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req = request(http.MethodDelete, "/grants", body, admin, params)
	rec = httptest.NewRecorder()
	h.HandleRevokeGrant(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("revoke status = %d: %s", rec.Code, rec.Body.String())
	}
}
