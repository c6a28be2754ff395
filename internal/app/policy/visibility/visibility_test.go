package visibility

import (
	"reflect"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/system/perms"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeUser(role perms.Role) models.User {
	return models.User{
		ID:     primitive.NewObjectID(),
		Role:   string(role),
		Status: models.StatusActive,
	}
}

func viewer(u models.User, groups ...primitive.ObjectID) Viewer {
	v := Viewer{
		User:         u,
		ActiveGroups: map[primitive.ObjectID]bool{},
		Perms:        perms.Set{},
	}
	if role, ok := perms.ParseRole(u.Role); ok {
		v.Perms = v.Perms.Union(perms.Defaults(role))
	}
	for _, g := range groups {
		v.ActiveGroups[g] = true
	}
	return v
}

func group(visibility, minRole string) models.Group {
	return models.Group{
		ID:         primitive.NewObjectID(),
		Name:       "G",
		Type:       models.GroupTypeProject,
		Visibility: visibility,
		MinRole:    minRole,
		Active:     true,
	}
}

func TestCanViewGroupTiers(t *testing.T) {
	public := group(models.VisibilityPublic, "")
	restricted := group(models.VisibilityRestricted, "")
	private := group(models.VisibilityPrivate, string(perms.RoleTeamManager))

	member := activeUser(perms.RoleMember)
	manager := activeUser(perms.RoleTeamManager)
	admin := activeUser(perms.RoleAdmin)
	inactive := activeUser(perms.RoleAdmin)
	inactive.Status = models.StatusInactive

	viewAll := viewer(activeUser(perms.RoleMember))
	viewAll.Perms.Add(perms.GroupViewAll)

	tests := []struct {
		name string
		v    Viewer
		g    models.Group
		want bool
	}{
		{"public visible to any active user", viewer(member), public, true},
		{"public hidden from inactive", viewer(inactive), public, false},

		{"restricted hidden from non-member", viewer(member), restricted, false},
		{"restricted visible to member", viewer(member, restricted.ID), restricted, true},
		{"restricted visible via group:view_all", viewAll, restricted, true},

		{"private hidden from non-member", viewer(manager), private, false},
		{"private hidden below min role", viewer(member, private.ID), private, false},
		{"private visible at min role", viewer(manager, private.ID), private, true},
		{"private visible to admin without membership", viewer(admin), private, true},
		{"private hidden from inactive admin", viewer(inactive, private.ID), private, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewGroup(tt.v, tt.g); got != tt.want {
				t.Errorf("CanViewGroup = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOwnerSeesEverything(t *testing.T) {
	v := viewer(activeUser(perms.RoleMember))
	v.Owner = true
	for _, g := range []models.Group{
		group(models.VisibilityPublic, ""),
		group(models.VisibilityRestricted, ""),
		group(models.VisibilityPrivate, string(perms.RoleOwner)),
	} {
		if !CanViewGroup(v, g) {
			t.Errorf("owner cannot see %s group", g.Visibility)
		}
	}
}

func TestCanViewContentCategories(t *testing.T) {
	member := viewer(activeUser(perms.RoleMember))
	hr := viewer(activeUser(perms.RoleMember))
	hr.Perms.Add(perms.ContentViewHR)
	inactive := activeUser(perms.RoleMember)
	inactive.Status = models.StatusSuspended

	tests := []struct {
		name string
		v    Viewer
		cat  string
		want bool
	}{
		{"public category open to all", member, models.CategoryPublic, true},
		{"unknown category fails open", member, "wiki", true},
		{"empty category fails open", member, "", true},
		{"named category requires permission", member, models.CategoryHR, false},
		{"named category with permission", hr, models.CategoryHR, true},
		{"public category open even to inactive", viewer(inactive), models.CategoryPublic, true},
		{"inactive denied named category", viewer(inactive), models.CategoryAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.Resource{Title: "Doc", Category: tt.cat}
			if got := CanViewContent(tt.v, r); got != tt.want {
				t.Errorf("CanViewContent(%q) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}

func TestFilterGroupsPreservesOrderAndInput(t *testing.T) {
	member := activeUser(perms.RoleMember)
	a := group(models.VisibilityPublic, "")
	b := group(models.VisibilityPrivate, "")
	c := group(models.VisibilityPublic, "")
	in := []models.Group{a, b, c}
	inCopy := append([]models.Group(nil), in...)

	got := FilterGroups(viewer(member), in)
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Errorf("filtered = %v, want [a c] in order", got)
	}
	if !reflect.DeepEqual(in, inCopy) {
		t.Error("input slice was mutated")
	}

	// Idempotent: filtering the filtered list changes nothing.
	again := FilterGroups(viewer(member), got)
	if !reflect.DeepEqual(got, again) {
		t.Error("second filter pass changed the result")
	}
}

func TestFilterContentIdempotent(t *testing.T) {
	v := viewer(activeUser(perms.RoleMember))
	v.Perms.Add(perms.ContentViewIT)
	in := []models.Resource{
		{Title: "Handbook", Category: models.CategoryHR},
		{Title: "Runbook", Category: models.CategoryIT},
		{Title: "Lunch menu", Category: models.CategoryPublic},
		{Title: "Notes", Category: "misc"},
	}

	got := FilterContent(v, in)
	want := []string{"Runbook", "Lunch menu", "Notes"}
	if len(got) != len(want) {
		t.Fatalf("filtered %d resources, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Title, title)
		}
	}
	again := FilterContent(v, got)
	if !reflect.DeepEqual(got, again) {
		t.Error("second filter pass changed the result")
	}
}
