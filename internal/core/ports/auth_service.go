package ports

import (
	"context"

	"github.com/insanos/auth-server/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// Roles holds requested role labels; see domain.ResolveRoles.
	Roles []string
}

// TokenService issues and validates signed session tokens.
type TokenService interface {
	Issue(subject string) (*domain.Token, error)
	Validate(token string) (*domain.TokenClaims, error)
	ExtractSubject(token string) (string, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	ResolveClaims(ctx context.Context, token string) (*domain.Claims, error)
}
