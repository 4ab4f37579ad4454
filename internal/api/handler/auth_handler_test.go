package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/insanos/auth-server/internal/core/domain"
	"github.com/insanos/auth-server/internal/core/ports"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return s.authenticateFn(ctx, creds)
}

func (s *stubAuthService) ResolveClaims(context.Context, string) (*domain.Claims, error) {
	return nil, domain.ErrTokenMalformed
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "a@example.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.Roles) != 1 || in.Roles[0] != "admin" {
				t.Fatalf("unexpected roles: %v", in.Roles)
			}
			return &domain.User{ID: 1, Username: in.Username, Email: in.Email, PasswordHash: "hash", Roles: []string{domain.RoleAdmin}, Enabled: true}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/api/auth/register", `{"username":"alice","email":"a@example.com","password":"secret1","roles":["admin"]}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	resp := decode(t, rec)
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["email"] != "a@example.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Register_Conflicts(t *testing.T) {
	for _, want := range []error{domain.ErrUsernameTaken, domain.ErrEmailTaken} {
		e := newEcho()
		stub := &stubAuthService{
			registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
				return nil, want
			},
		}
		handler := NewAuthHandler(stub)

		c, rec := postJSON(e, "/api/auth/register", `{"username":"bob","email":"b@example.com","password":"secret1"}`)
		_ = handler.Register(c)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", want, rec.Code)
		}
		if resp := decode(t, rec); resp["error"] != want.Error() {
			t.Fatalf("%v: unexpected error message %v", want, resp["error"])
		}
	}
}

func TestAuthHandler_Register_UnexpectedError(t *testing.T) {
	e := newEcho()
	boom := errors.New("store unavailable")
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) { return nil, boom },
	})

	c, _ := postJSON(e, "/api/auth/register", `{"username":"bob","email":"b@example.com","password":"secret1"}`)
	if err := handler.Register(c); !errors.Is(err, boom) {
		t.Fatalf("expected error to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"invalid json", "not-json", "invalid payload"},
		{"short username", `{"username":"al","email":"a@example.com","password":"secret1"}`, "username must be at least 3 characters"},
		{"long username", `{"username":"` + strings.Repeat("a", 21) + `","email":"a@example.com","password":"secret1"}`, "username must be at most 20 characters"},
		{"bad email", `{"username":"alice","email":"nope","password":"secret1"}`, "email must be a valid email"},
		{"long email", `{"username":"alice","email":"` + strings.Repeat("a", 45) + `@x.com","password":"secret1"}`, "email must be at most 50 characters"},
		{"short password", `{"username":"alice","email":"a@example.com","password":"12345"}`, "password must be at least 6 characters"},
		{"multi-byte password over 72 bytes", `{"username":"alice","email":"a@example.com","password":"` + strings.Repeat("é", 40) + `"}`, "password must be at most 72 bytes"},
		{"missing password", `{"username":"alice","email":"a@example.com"}`, "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			handler := NewAuthHandler(&stubAuthService{
				registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			})

			c, rec := postJSON(e, "/api/auth/register", tt.body)
			_ = handler.Register(c)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			msg, _ := decode(t, rec)["error"].(string)
			if !strings.Contains(msg, tt.wantMsg) {
				t.Fatalf("error %q does not contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	handler := NewAuthHandler(&stubAuthService{
		authenticateFn: func(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
			if creds.Identifier != "alice" || creds.Password != "secret" {
				t.Fatalf("unexpected credentials for %s", creds.Identifier)
			}
			return &domain.Session{
				Token: "token123", Type: domain.TokenType, ExpiresAt: expires,
				ID: 1, Username: "alice", Email: "a@example.com", Roles: []string{domain.RoleUser},
			}, nil
		},
	})

	c, rec := postJSON(e, "/api/auth/login", `{"username":"alice","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["token"] != "token123" || resp["type"] != "Bearer" || resp["username"] != "alice" {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		e := newEcho()
		handler := NewAuthHandler(&stubAuthService{
			authenticateFn: func(context.Context, domain.Credentials) (*domain.Session, error) {
				return nil, tt.err
			},
		})

		c, rec := postJSON(e, "/api/auth/login", `{"username":"alice","password":"bad"}`)
		_ = handler.Login(c)

		if rec.Code != tt.code {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.code, rec.Code)
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	for _, body := range []string{"{", `{"username":"alice"}`, `{"password":"x"}`} {
		e := newEcho()
		handler := NewAuthHandler(&stubAuthService{
			authenticateFn: func(context.Context, domain.Credentials) (*domain.Session, error) {
				t.Fatalf("should not be called")
				return nil, nil
			},
		})

		c, rec := postJSON(e, "/api/auth/login", body)
		_ = handler.Login(c)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}
