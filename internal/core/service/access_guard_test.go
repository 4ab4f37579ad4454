package service

import (
	"slices"
	"testing"

	"github.com/insanos/auth-server/internal/core/domain"
)

func claimsWithRoles(roles ...string) *domain.Claims {
	return &domain.Claims{
		TokenClaims: domain.TokenClaims{Subject: "alice"},
		Roles:       roles,
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name          string
		claims        *domain.Claims
		required      []string
		authenticated bool
		granted       bool
		matched       string
		missing       []string
	}{
		{
			name:     "unauthenticated",
			claims:   nil,
			required: []string{domain.RoleUser},
			missing:  []string{domain.RoleUser},
		},
		{
			name:          "user lacks admin",
			claims:        claimsWithRoles(domain.RoleUser),
			required:      []string{domain.RoleAdmin},
			authenticated: true,
			missing:       []string{domain.RoleAdmin},
		},
		{
			name:          "admin granted",
			claims:        claimsWithRoles(domain.RoleUser, domain.RoleAdmin),
			required:      []string{domain.RoleAdmin},
			authenticated: true,
			granted:       true,
			matched:       domain.RoleAdmin,
		},
		{
			name:          "any of several roles",
			claims:        claimsWithRoles(domain.RoleAdmin),
			required:      []string{domain.RoleUser, domain.RoleAdmin},
			authenticated: true,
			granted:       true,
			matched:       domain.RoleAdmin,
			missing:       []string{domain.RoleUser},
		},
		{
			name:          "no roles required",
			claims:        claimsWithRoles(domain.RoleUser),
			authenticated: true,
			granted:       true,
		},
		{
			name:          "no roles held",
			claims:        claimsWithRoles(),
			required:      []string{domain.RoleUser},
			authenticated: true,
			missing:       []string{domain.RoleUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.claims, tt.required...)
			if d.Authenticated != tt.authenticated || d.Granted != tt.granted {
				t.Fatalf("decision = %+v, want authenticated=%v granted=%v", d, tt.authenticated, tt.granted)
			}
			if d.Matched != tt.matched {
				t.Fatalf("matched = %q, want %q", d.Matched, tt.matched)
			}
			if !slices.Equal(d.Missing, tt.missing) {
				t.Fatalf("missing = %v, want %v", d.Missing, tt.missing)
			}
		})
	}
}
