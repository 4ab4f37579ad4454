package service

import (
	"context"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/insanos/auth-server/internal/core/domain"
)

func TestSeedUsers(t *testing.T) {
	store := newStubCredentialStore()
	ctx := context.Background()

	n, err := SeedUsers(ctx, store, stubHasher{}, DefaultSeedUsers("insanos321", "admin123"), zerolog.Nop())
	if err != nil {
		t.Fatalf("SeedUsers error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 users created, got %d", n)
	}

	admin := store.users["admin"]
	if admin == nil || !admin.Enabled || !admin.HasRole(domain.RoleAdmin) || !admin.HasRole(domain.RoleUser) {
		t.Fatalf("unexpected admin seed: %+v", admin)
	}
	if admin.PasswordHash != "hashed:admin123" {
		t.Fatalf("expected hashed password")
	}
	if !slices.Equal(store.users["insanos"].Roles, []string{domain.RoleUser}) {
		t.Fatalf("unexpected user roles: %v", store.users["insanos"].Roles)
	}

	// Second run is a no-op.
	n, err = SeedUsers(ctx, store, stubHasher{}, DefaultSeedUsers("insanos321", "admin123"), zerolog.Nop())
	if err != nil || n != 0 {
		t.Fatalf("expected idempotent seeding, got n=%d err=%v", n, err)
	}
}

func TestSeedUsers_SkipsMissingPassword(t *testing.T) {
	store := newStubCredentialStore()

	n, err := SeedUsers(context.Background(), store, stubHasher{}, DefaultSeedUsers("insanos321", ""), zerolog.Nop())
	if err != nil {
		t.Fatalf("SeedUsers error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 user created, got %d", n)
	}
	if _, ok := store.users["admin"]; ok {
		t.Fatalf("admin should not be seeded without a password")
	}
}
