package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustCreateUser(t *testing.T, s *Store, email string, role perms.Role) models.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), models.User{
		Email:    email,
		FullName: "Test User",
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustCreateGroup(t *testing.T, s *Store, name string, createdBy primitive.ObjectID, mutate func(*models.Group)) models.Group {
	t.Helper()
	g := models.Group{
		Name:      name,
		Type:      models.GroupTypeProject,
		CreatedBy: createdBy,
	}
	if mutate != nil {
		mutate(&g)
	}
	created, err := s.Groups().Create(context.Background(), g)
	if err != nil {
		t.Fatalf("create group %s: %v", name, err)
	}
	return created
}

func TestUserCreateNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, models.User{
		Email:    "  Alice@Example.COM ",
		FullName: "  Alice A  ",
		Role:     string(perms.RoleMember),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.FullName != "Alice A" {
		t.Errorf("full name = %q, want trimmed", u.FullName)
	}
	if u.Status != models.StatusActive {
		t.Errorf("status = %q, want default active", u.Status)
	}

	// Same address with different case collides.
	_, err = s.Users().Create(ctx, models.User{
		Email:    "ALICE@example.com",
		FullName: "Imposter",
		Role:     string(perms.RoleMember),
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}

	got, err := s.Users().GetByEmail(ctx, "Alice@EXAMPLE.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail returned wrong user")
	}
}

func TestUserCreateValidation(t *testing.T) {
	s := New()
	tests := []struct {
		name string
		user models.User
	}{
		{"empty email", models.User{FullName: "X", Role: "member"}},
		{"not an email", models.User{Email: "nope", FullName: "X", Role: "member"}},
		{"unknown role", models.User{Email: "x@example.com", FullName: "X", Role: "boss"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Users().Create(context.Background(), tt.user)
			if !store.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRecordLogin(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := mustCreateUser(t, s, "login@example.com", perms.RoleMember)

	for i := 0; i < 3; i++ {
		if err := s.Users().RecordLogin(ctx, u.ID); err != nil {
			t.Fatalf("record login: %v", err)
		}
	}
	got, err := s.Users().GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LoginCount != 3 {
		t.Errorf("login count = %d, want 3", got.LoginCount)
	}
	if got.LastLoginAt == nil {
		t.Error("last login not set")
	}
}

func TestGroupCreateInsertsFoundingMembership(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "founder@example.com", perms.RoleMember)

	g := mustCreateGroup(t, s, "Platform Team", creator.ID, nil)
	if !g.Active {
		t.Error("new group should be active")
	}
	if g.Visibility != models.VisibilityPublic {
		t.Errorf("visibility = %q, want default public", g.Visibility)
	}

	m, err := s.Memberships().Get(ctx, g.ID, creator.ID)
	if err != nil {
		t.Fatalf("founder membership: %v", err)
	}
	if m.Status != models.MembershipActive {
		t.Errorf("founder status = %q, want active", m.Status)
	}
	if m.RoleLabel != "Creator" {
		t.Errorf("founder label = %q, want Creator", m.RoleLabel)
	}
	if !m.CanInvite || !m.CanRemove || !m.CanEdit {
		t.Error("founder should hold all membership capabilities")
	}
	if m.JoinedAt == nil {
		t.Error("founder joined_at not set")
	}

	n, err := s.Memberships().CountActive(ctx, g.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("active count = %d, want 1", n)
	}
}

func TestGroupCreateFailuresLeaveNothingBehind(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "c@example.com", perms.RoleMember)
	mustCreateGroup(t, s, "Taken", creator.ID, nil)

	// Duplicate name, case-insensitive.
	_, err := s.Groups().Create(ctx, models.Group{
		Name:      "  TAKEN ",
		Type:      models.GroupTypeProject,
		CreatedBy: creator.ID,
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate name: err = %v, want ErrConflict", err)
	}

	// Unknown creator.
	_, err = s.Groups().Create(ctx, models.Group{
		Name:      "Orphan",
		Type:      models.GroupTypeProject,
		CreatedBy: primitive.NewObjectID(),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing creator: err = %v, want ErrNotFound", err)
	}

	// Neither failure left a group or membership row.
	groups, err := s.Groups().List(ctx, store.GroupFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups after failures = %d, want 1", len(groups))
	}
	rows, err := s.Memberships().ListByGroup(ctx, groups[0].ID)
	if err != nil {
		t.Fatalf("list memberships: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("membership rows = %d, want just the founder", len(rows))
	}
}

func TestGroupUpdateAndRename(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "u@example.com", perms.RoleMember)
	a := mustCreateGroup(t, s, "Alpha", creator.ID, nil)
	mustCreateGroup(t, s, "Beta", creator.ID, nil)

	// Renaming onto another group's folded name conflicts.
	name := "beta"
	err := s.Groups().Update(ctx, a.ID, store.GroupPatch{Name: &name})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("rename onto beta: err = %v, want ErrConflict", err)
	}

	// A clean rename re-indexes: the old name becomes available.
	name = "Gamma"
	if err := s.Groups().Update(ctx, a.ID, store.GroupPatch{Name: &name}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	mustCreateGroup(t, s, "Alpha", creator.ID, nil)

	// Clearing the member cap via the double pointer.
	cap := 5
	capPtr := &cap
	if err := s.Groups().Update(ctx, a.ID, store.GroupPatch{MaxMembers: &capPtr}); err != nil {
		t.Fatalf("set cap: %v", err)
	}
	capPtr = nil
	if err := s.Groups().Update(ctx, a.ID, store.GroupPatch{MaxMembers: &capPtr}); err != nil {
		t.Fatalf("clear cap: %v", err)
	}
	got, err := s.Groups().GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MaxMembers != nil {
		t.Error("cap should be cleared")
	}
}

func TestGroupDeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "d@example.com", perms.RoleMember)
	other := mustCreateUser(t, s, "d2@example.com", perms.RoleMember)
	g := mustCreateGroup(t, s, "Doomed", creator.ID, func(g *models.Group) {
		g.AutoApprove = true
	})
	if _, err := s.Memberships().Add(ctx, g.ID, other.ID, store.AddMemberOptions{RoleLabel: "Member"}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := s.Permissions().GrantGroup(ctx, models.GroupPermission{
		GroupID:    g.ID,
		Permission: string(perms.ContentViewFinance),
	}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := s.Groups().Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Groups().GetByID(ctx, g.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("group survives delete: %v", err)
	}
	if _, err := s.Memberships().Get(ctx, g.ID, other.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("membership survives delete: %v", err)
	}
	grants, err := s.Permissions().ListGroupGrants(ctx, g.ID)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("grants survive delete: %d", len(grants))
	}

	// The name is available again.
	mustCreateGroup(t, s, "Doomed", creator.ID, nil)
}

func TestGroupListFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "l@example.com", perms.RoleMember)
	mustCreateGroup(t, s, "Payroll", creator.ID, func(g *models.Group) {
		g.Type = models.GroupTypeDepartment
		g.Visibility = models.VisibilityPrivate
		g.Tags = []string{"finance"}
	})
	mustCreateGroup(t, s, "Launch", creator.ID, func(g *models.Group) {
		g.Type = models.GroupTypeProject
		g.Description = "Q4 product launch"
	})
	retired := mustCreateGroup(t, s, "Retired", creator.ID, nil)
	inactive := false
	if err := s.Groups().Update(ctx, retired.ID, store.GroupPatch{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tests := []struct {
		name   string
		filter store.GroupFilter
		want   []string
	}{
		{"active only by default", store.GroupFilter{}, []string{"Payroll", "Launch"}},
		{"include inactive", store.GroupFilter{IncludeInactive: true}, []string{"Payroll", "Launch", "Retired"}},
		{"by type", store.GroupFilter{Types: []string{models.GroupTypeDepartment}}, []string{"Payroll"}},
		{"by visibility", store.GroupFilter{Visibilities: []string{models.VisibilityPrivate}}, []string{"Payroll"}},
		{"search name", store.GroupFilter{Search: "pay"}, []string{"Payroll"}},
		{"search description", store.GroupFilter{Search: "LAUNCH"}, []string{"Launch"}},
		{"search tag", store.GroupFilter{Search: "finance"}, []string{"Payroll"}},
		{"no match", store.GroupFilter{Search: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Groups().List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			names := make(map[string]bool, len(got))
			for _, g := range got {
				names[g.Name] = true
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d groups, want %d", len(got), len(tt.want))
			}
			for _, w := range tt.want {
				if !names[w] {
					t.Errorf("missing %q in %v", w, names)
				}
			}
		})
	}
}

func TestGroupListPagination(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "p@example.com", perms.RoleMember)
	for _, name := range []string{"One", "Two", "Three", "Four"} {
		mustCreateGroup(t, s, name, creator.ID, nil)
	}

	page1, err := s.Groups().List(ctx, store.GroupFilter{Limit: 3})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page2, err := s.Groups().List(ctx, store.GroupFilter{Limit: 3, Offset: 3})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page1) != 3 || len(page2) != 1 {
		t.Fatalf("page sizes = %d, %d; want 3, 1", len(page1), len(page2))
	}
	seen := map[primitive.ObjectID]bool{}
	for _, g := range append(page1, page2...) {
		if seen[g.ID] {
			t.Errorf("group %s appears on both pages", g.Name)
		}
		seen[g.ID] = true
	}
	// Past the end.
	empty, err := s.Groups().List(ctx, store.GroupFilter{Offset: 10})
	if err != nil {
		t.Fatalf("offset past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("offset past end returned %d rows", len(empty))
	}
}

func TestMembershipAddPendingAndAutoApprove(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "m@example.com", perms.RoleMember)
	joiner := mustCreateUser(t, s, "m2@example.com", perms.RoleMember)

	manual := mustCreateGroup(t, s, "Manual", creator.ID, nil)
	auto := mustCreateGroup(t, s, "Auto", creator.ID, func(g *models.Group) {
		g.AutoApprove = true
	})

	m, err := s.Memberships().Add(ctx, manual.ID, joiner.ID, store.AddMemberOptions{RoleLabel: "Member"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Status != models.MembershipPending {
		t.Errorf("status = %q, want pending", m.Status)
	}
	if m.JoinedAt != nil {
		t.Error("pending membership should not have joined_at")
	}

	m, err = s.Memberships().Add(ctx, auto.ID, joiner.ID, store.AddMemberOptions{RoleLabel: "Member"})
	if err != nil {
		t.Fatalf("add auto: %v", err)
	}
	if m.Status != models.MembershipActive {
		t.Errorf("auto-approve status = %q, want active", m.Status)
	}
	if m.JoinedAt == nil {
		t.Error("auto-approved membership should have joined_at")
	}

	// The pending row still counts as existing.
	_, err = s.Memberships().Add(ctx, manual.ID, joiner.ID, store.AddMemberOptions{})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("re-add pending: err = %v, want ErrConflict", err)
	}
}

func TestMembershipApproveAndRemove(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "a@example.com", perms.RoleMember)
	joiner := mustCreateUser(t, s, "a2@example.com", perms.RoleMember)
	g := mustCreateGroup(t, s, "Club", creator.ID, nil)

	if _, err := s.Memberships().Add(ctx, g.ID, joiner.ID, store.AddMemberOptions{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Memberships().Approve(ctx, g.ID, joiner.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	m, err := s.Memberships().Get(ctx, g.ID, joiner.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Status != models.MembershipActive || m.JoinedAt == nil {
		t.Errorf("after approve: status=%q joined=%v", m.Status, m.JoinedAt)
	}

	// Approving an already-active row is a no-row condition.
	if err := s.Memberships().Approve(ctx, g.ID, joiner.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("double approve: err = %v, want ErrNotFound", err)
	}

	removed, err := s.Memberships().Remove(ctx, g.ID, joiner.ID)
	if err != nil || !removed {
		t.Fatalf("remove = %v, %v; want true, nil", removed, err)
	}
	removed, err = s.Memberships().Remove(ctx, g.ID, joiner.ID)
	if err != nil || removed {
		t.Errorf("second remove = %v, %v; want false, nil", removed, err)
	}

	// Removed rows drop out of listings but keep history.
	rows, err := s.Memberships().ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("listing shows %d rows, want just the founder", len(rows))
	}
	m, err = s.Memberships().Get(ctx, g.ID, joiner.ID)
	if err != nil {
		t.Fatalf("get removed: %v", err)
	}
	if m.Status != models.MembershipRemoved {
		t.Errorf("removed status = %q", m.Status)
	}
}

func TestMembershipRejoinReusesTheRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "r@example.com", perms.RoleMember)
	joiner := mustCreateUser(t, s, "r2@example.com", perms.RoleMember)
	g := mustCreateGroup(t, s, "Revolving", creator.ID, func(g *models.Group) {
		g.AutoApprove = true
	})

	first, err := s.Memberships().Add(ctx, g.ID, joiner.ID, store.AddMemberOptions{RoleLabel: "Member"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Memberships().Remove(ctx, g.ID, joiner.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := s.Memberships().Add(ctx, g.ID, joiner.ID, store.AddMemberOptions{RoleLabel: "Returning"})
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if second.ID != first.ID {
		t.Error("rejoin should reuse the original row")
	}
	if second.Status != models.MembershipActive {
		t.Errorf("rejoin status = %q, want active", second.Status)
	}
	if second.RoleLabel != "Returning" {
		t.Errorf("rejoin label = %q", second.RoleLabel)
	}
}

func TestMembershipCapacity(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "cap@example.com", perms.RoleMember)
	g := mustCreateGroup(t, s, "Tiny", creator.ID, func(g *models.Group) {
		two := 2
		g.MaxMembers = &two
		g.AutoApprove = true
	})

	second := mustCreateUser(t, s, "cap2@example.com", perms.RoleMember)
	third := mustCreateUser(t, s, "cap3@example.com", perms.RoleMember)

	if _, err := s.Memberships().Add(ctx, g.ID, second.ID, store.AddMemberOptions{}); err != nil {
		t.Fatalf("second member: %v", err)
	}
	// Founder plus one fills the cap.
	_, err := s.Memberships().Add(ctx, g.ID, third.ID, store.AddMemberOptions{})
	if !errors.Is(err, store.ErrCapacityExceeded) {
		t.Errorf("over cap: err = %v, want ErrCapacityExceeded", err)
	}

	// Removing one frees a slot.
	if _, err := s.Memberships().Remove(ctx, g.ID, second.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Memberships().Add(ctx, g.ID, third.ID, store.AddMemberOptions{}); err != nil {
		t.Errorf("join after slot freed: %v", err)
	}
}

func TestMembershipCapacityUnderConcurrentJoins(t *testing.T) {
	s := New()
	ctx := context.Background()
	creator := mustCreateUser(t, s, "race@example.com", perms.RoleMember)
	g := mustCreateGroup(t, s, "Limited", creator.ID, func(g *models.Group) {
		cap := 5
		g.MaxMembers = &cap
		g.AutoApprove = true
	})

	const joiners = 20
	ids := make([]primitive.ObjectID, joiners)
	for i := range ids {
		u := mustCreateUser(t, s, string(rune('a'+i))+"@race.example.com", perms.RoleMember)
		ids[i] = u.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id primitive.ObjectID) {
			defer wg.Done()
			_, errs[i] = s.Memberships().Add(ctx, g.ID, id, store.AddMemberOptions{})
		}(i, id)
	}
	wg.Wait()

	var admitted, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, store.ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Founder holds one of the five slots.
	if admitted != 4 {
		t.Errorf("admitted = %d, want 4", admitted)
	}
	if rejected != joiners-4 {
		t.Errorf("rejected = %d, want %d", rejected, joiners-4)
	}
	n, err := s.Memberships().CountActive(ctx, g.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Errorf("active count = %d, want exactly the cap", n)
	}
}

func TestPermissionGrantsAndRevokes(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := mustCreateUser(t, s, "g@example.com", perms.RoleMember)

	if _, err := s.Permissions().GrantUser(ctx, models.UserPermission{
		UserID:     u.ID,
		Permission: "content:view_hr",
	}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	// Same token with a resource is a distinct grant.
	if _, err := s.Permissions().GrantUser(ctx, models.UserPermission{
		UserID:     u.ID,
		Permission: "content:view_hr",
		Resource:   "handbook",
	}); err != nil {
		t.Fatalf("scoped grant: %v", err)
	}
	// Exact duplicates conflict.
	_, err := s.Permissions().GrantUser(ctx, models.UserPermission{
		UserID:     u.ID,
		Permission: "content:view_hr",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate grant: err = %v, want ErrConflict", err)
	}
	// Unknown tokens never land.
	_, err = s.Permissions().GrantUser(ctx, models.UserPermission{
		UserID:     u.ID,
		Permission: "content:view_everything",
	})
	if !store.IsValidation(err) {
		t.Errorf("unknown token: err = %v, want validation error", err)
	}

	revoked, err := s.Permissions().RevokeUser(ctx, u.ID, "content:view_hr", "")
	if err != nil || !revoked {
		t.Fatalf("revoke = %v, %v; want true, nil", revoked, err)
	}
	revoked, err = s.Permissions().RevokeUser(ctx, u.ID, "content:view_hr", "")
	if err != nil || revoked {
		t.Errorf("second revoke = %v, %v; want false, nil", revoked, err)
	}
	grants, err := s.Permissions().ListUserGrants(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grants) != 1 || grants[0].Resource != "handbook" {
		t.Errorf("remaining grants = %+v, want just the scoped one", grants)
	}
}

func TestAccessSnapshotIsScopedToActiveMemberships(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := mustCreateUser(t, s, "snap@example.com", perms.RoleMember)
	other := mustCreateUser(t, s, "snap2@example.com", perms.RoleMember)

	active := mustCreateGroup(t, s, "In", u.ID, nil)
	pending := mustCreateGroup(t, s, "Waiting", other.ID, nil)
	if _, err := s.Memberships().Add(ctx, pending.ID, u.ID, store.AddMemberOptions{}); err != nil {
		t.Fatalf("add pending: %v", err)
	}
	for _, gid := range []primitive.ObjectID{active.ID, pending.ID} {
		if _, err := s.Permissions().GrantGroup(ctx, models.GroupPermission{
			GroupID:    gid,
			Permission: "analytics:view",
		}); err != nil {
			t.Fatalf("grant group: %v", err)
		}
	}
	if _, err := s.Permissions().GrantUser(ctx, models.UserPermission{
		UserID:     u.ID,
		Permission: "user:view",
	}); err != nil {
		t.Fatalf("grant user: %v", err)
	}

	snap, err := s.AccessSnapshot(ctx, u.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.User.ID != u.ID {
		t.Error("snapshot user mismatch")
	}
	if len(snap.ActiveMemberships) != 1 || snap.ActiveMemberships[0].GroupID != active.ID {
		t.Errorf("active memberships = %+v, want only the founded group", snap.ActiveMemberships)
	}
	if len(snap.UserGrants) != 1 {
		t.Errorf("user grants = %d, want 1", len(snap.UserGrants))
	}
	if _, ok := snap.GroupGrants[active.ID]; !ok {
		t.Error("missing grants for the active group")
	}
	if _, ok := snap.GroupGrants[pending.ID]; ok {
		t.Error("pending membership's group grants must not leak into the snapshot")
	}

	if _, err := s.AccessSnapshot(ctx, primitive.NewObjectID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown user: err = %v, want ErrNotFound", err)
	}
}

func TestAuditLogAndQuery(t *testing.T) {
	s := New()
	ctx := context.Background()
	actor := primitive.NewObjectID()

	events := []store.AuditEvent{
		{Category: store.AuditCategoryAuth, EventType: store.EventLoginSuccess, ActorID: &actor, Success: true},
		{Category: store.AuditCategoryAdmin, EventType: store.EventGroupCreated, ActorID: &actor, Success: true},
		{Category: store.AuditCategoryAuth, EventType: store.EventLoginRejectedDomain, Success: false},
	}
	for _, e := range events {
		if err := s.Audit().Log(ctx, e); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	got, err := s.Audit().Query(ctx, store.AuditFilter{Category: store.AuditCategoryAuth})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("auth events = %d, want 2", len(got))
	}
	got, err = s.Audit().Query(ctx, store.AuditFilter{ActorID: &actor})
	if err != nil {
		t.Fatalf("query by actor: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("actor events = %d, want 2", len(got))
	}
	got, err = s.Audit().Query(ctx, store.AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limited query = %d rows, want 1", len(got))
	}
}
