// internal/testutil/fixtures.go

// Package testutil provides shared helpers for handler and store tests.
// Everything runs against the in-memory store; no external services.
package testutil

import (
	"context"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/store/memstore"
	"github.com/dalemusser/accesshub/internal/domain/models"
)

// Fixtures creates test data against a store.
type Fixtures struct {
	st store.Store
	t  *testing.T
}

// NewFixtures returns a Fixtures bound to a fresh in-memory store.
func NewFixtures(t *testing.T) (*Fixtures, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return &Fixtures{st: st, t: t}, st
}

// User creates an active user with the given email and role.
func (f *Fixtures) User(email, role string) models.User {
	f.t.Helper()
	u, err := f.st.Users().Create(context.Background(), models.User{
		Email:    email,
		FullName: "Test User",
		Role:     role,
	})
	if err != nil {
		f.t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// Group creates a public department group owned by creator. mut can
// adjust the group before insertion.
func (f *Fixtures) Group(creator models.User, mut func(*models.Group)) models.Group {
	f.t.Helper()
	g := models.Group{
		Name:      "Test Group",
		Type:      models.GroupTypeDepartment,
		CreatedBy: creator.ID,
	}
	if mut != nil {
		mut(&g)
	}
	created, err := f.st.Groups().Create(context.Background(), g)
	if err != nil {
		f.t.Fatalf("create group: %v", err)
	}
	return created
}

// ActiveMember adds u to g and approves the membership.
func (f *Fixtures) ActiveMember(g models.Group, u models.User) models.GroupMembership {
	f.t.Helper()
	m, err := f.st.Memberships().Add(context.Background(), g.ID, u.ID, store.AddMemberOptions{})
	if err != nil {
		f.t.Fatalf("add member: %v", err)
	}
	if m.Status == models.MembershipActive {
		return m
	}
	if err := f.st.Memberships().Approve(context.Background(), g.ID, u.ID); err != nil {
		f.t.Fatalf("approve member: %v", err)
	}
	got, err := f.st.Memberships().Get(context.Background(), g.ID, u.ID)
	if err != nil {
		f.t.Fatalf("reload membership: %v", err)
	}
	return *got
}
