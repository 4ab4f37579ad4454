package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/insanos/auth-server/internal/api/middleware"
	"github.com/insanos/auth-server/internal/core/domain"
)

type stubResolver struct{}

func (stubResolver) ResolveClaims(_ context.Context, token string) (*domain.Claims, error) {
	if token != "good" {
		return nil, domain.ErrTokenBadSignature
	}
	return &domain.Claims{
		TokenClaims: domain.TokenClaims{Subject: "alice"},
		UserID:      7,
		Email:       "a@example.com",
		Roles:       []string{domain.RoleUser},
	}, nil
}

func serve(t *testing.T, mw echo.MiddlewareFunc, h echo.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEcho()
	e.GET("/", h, mw)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Check(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	optional := middleware.OptionalAuth(stubResolver{}, zerolog.Nop())

	rec := serve(t, optional, h.Check, "Bearer good")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["authenticated"] != true || resp["username"] != "alice" || resp["id"] != float64(7) {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	for _, header := range []string{"", "Bearer forged"} {
		rec = serve(t, optional, h.Check, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if decode(t, rec)["authenticated"] != false {
			t.Fatalf("header %q: expected authenticated=false", header)
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	required := middleware.Auth(stubResolver{}, zerolog.Nop())

	rec := serve(t, required, h.Me, "Bearer good")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["email"] != "a@example.com" || resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	rec = serve(t, required, h.Me, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Me_WithoutMiddleware(t *testing.T) {
	e := newEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := NewAuthHandler(&stubAuthService{}).Me(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestResourceHandler(t *testing.T) {
	h := NewResourceHandler()
	chain := func(roles ...string) echo.MiddlewareFunc {
		auth := middleware.OptionalAuth(stubResolver{}, zerolog.Nop())
		gate := middleware.RequireRoles(roles...)
		return func(next echo.HandlerFunc) echo.HandlerFunc { return auth(gate(next)) }
	}

	if rec := serve(t, func(next echo.HandlerFunc) echo.HandlerFunc { return next }, h.Public, ""); rec.Code != http.StatusOK {
		t.Fatalf("public: expected 200, got %d", rec.Code)
	}

	tests := []struct {
		name   string
		roles  []string
		h      echo.HandlerFunc
		header string
		want   int
	}{
		{"user with token", []string{domain.RoleUser, domain.RoleAdmin}, h.User, "Bearer good", http.StatusOK},
		{"user without token", []string{domain.RoleUser, domain.RoleAdmin}, h.User, "", http.StatusUnauthorized},
		{"user with forged token", []string{domain.RoleUser, domain.RoleAdmin}, h.User, "Bearer forged", http.StatusUnauthorized},
		{"admin as user", []string{domain.RoleAdmin}, h.Admin, "Bearer good", http.StatusForbidden},
		{"admin without token", []string{domain.RoleAdmin}, h.Admin, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, chain(tt.roles...), tt.h, tt.header)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
